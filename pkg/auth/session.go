// Package auth binds brigade members to HTTP sessions. The session records
// which person is operating the panel; that person is journaled as
// responsible for every stock movement made during the session.
//
// Cookie keys: SESSION_AUTH_KEY is 32 or 64 bytes (HMAC), SESSION_ENCRYPTION_KEY
// is 16, 24 or 32 bytes (AES). Generate production keys with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "brigade:session:"

// StoreOptions configures the session cookie.
type StoreOptions struct {
	// MaxAge is the idle lifetime of a session. Each authenticated request
	// extends it by another MaxAge.
	MaxAge time.Duration
	// Secure restricts the cookie to HTTPS. Set it outside development.
	Secure bool
}

// RedisStore is a sessions.Store that keeps session values in Redis under
// "brigade:session:<uuid>". The cookie only carries the encrypted session id.
type RedisStore struct {
	client  redis.UniversalClient
	codecs  []securecookie.Codec
	maxAge  time.Duration
	options sessions.Options
}

// NewSessionStore returns a Redis-backed store.
//
//	store := auth.NewSessionStore(app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey),
//	    auth.StoreOptions{MaxAge: cfg.SessionMaxAge, Secure: cfg.Environment == config.EnvProduction})
func NewSessionStore(client redis.UniversalClient, authKey, encryptionKey []byte, opts StoreOptions) *RedisStore {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 12 * time.Hour
	}
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		maxAge: opts.MaxAge,
		options: sessions.Options{
			Path:     "/",
			MaxAge:   int(opts.MaxAge / time.Second),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns the request's cached session or loads it through New.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. A missing, tampered or expired
// cookie, or a session evicted from Redis, yields a fresh session without
// error so the caller simply sees an unauthenticated request.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	id, ok := s.decodeCookie(r, name)
	if !ok {
		return session, nil
	}
	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, nil
	}
	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save writes the session to Redis and sets the cookie. A negative MaxAge
// deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), sessionKeyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.store(r.Context(), session.ID, session.Values); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) decodeCookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (s *RedisStore) store(ctx context.Context, id string, values map[any]any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, buf.Bytes(), s.maxAge).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// load reads the session and slides its expiry forward in one round trip.
func (s *RedisStore) load(ctx context.Context, id string) (map[any]any, error) {
	data, err := s.client.GetEx(ctx, sessionKeyPrefix+id, s.maxAge).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s expired", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	values := make(map[any]any)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}
	return values, nil
}
