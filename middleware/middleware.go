package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/voutila/sealbox"
	"github.com/voutila/sealbox/session"
)

type stateContextKey struct{}

func FromContext(ctx context.Context) (*State, bool) {
	st, ok := ctx.Value(stateContextKey{}).(*State)
	return st, ok
}

// commitWriter runs the session commit exactly once, before the first header
// or body byte leaves, so Set-Cookie can still take effect.
type commitWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *commitWriter) WriteHeader(code int) {
	w.runCommit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.runCommit()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *commitWriter) runCommit() {
	if w.committed {
		return
	}
	w.committed = true
	if w.commit != nil {
		w.commit()
	}
}

// CookieSessions returns middleware for stateless sessions: the sealed payload
// itself is the cookie value. A missing, expired, or tampered cookie yields a
// fresh empty session; the stale cookie is replaced or dropped at commit time.
//
//	Docs: docs/middleware.md
func CookieSessions(codec *sealbox.Codec, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				values    map[string]any
				fresh     = true
				badCookie bool
			)

			if c, err := r.Cookie(opts.name()); err == nil && c.Value != "" {
				var decoded map[string]any
				if err := codec.Open(c.Value, &decoded); err == nil {
					values = decoded
					fresh = false
				} else {
					badCookie = true
				}
			}

			state := newState("", values, fresh)

			cw := &commitWriter{ResponseWriter: w}
			cw.commit = func() {
				snapshot, dirty, cleared := state.snapshot()
				switch {
				case cleared:
					http.SetCookie(w, opts.expired())
				case dirty:
					sealed, err := codec.Seal(snapshot)
					if err != nil {
						log.Printf("sealbox: middleware seal failed: %v", err)
						return
					}
					http.SetCookie(w, opts.cookie(sealed))
				case badCookie:
					http.SetCookie(w, opts.expired())
				}
			}

			ctx := context.WithValue(r.Context(), stateContextKey{}, state)
			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.runCommit()
		})
	}
}

// StoreSessions returns middleware for server-side sessions: the cookie holds
// only a random session ID and payloads live behind the [session.Manager].
// When the store is unreachable the handler still runs with a fresh state and
// the cookie is left alone, so the session resumes once the store is back.
//
//	Docs: docs/middleware.md
func StoreSessions(manager *session.Manager, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				values    map[string]any
				sid       session.ID
				haveID    bool
				badCookie bool
			)

			if c, err := r.Cookie(opts.name()); err == nil && c.Value != "" {
				if id, err := session.ParseID(c.Value); err == nil {
					var decoded map[string]any
					loadErr := manager.Load(r.Context(), id, &decoded)
					if loadErr == nil {
						values = decoded
						sid = id
						haveID = true
					} else if errors.Is(loadErr, session.ErrNoSession) {
						badCookie = true
					} else {
						log.Printf("sealbox: middleware load failed: %v", loadErr)
					}
				} else {
					badCookie = true
				}
			}

			id := ""
			if haveID {
				id = sid.String()
			}
			state := newState(id, values, !haveID)

			cw := &commitWriter{ResponseWriter: w}
			cw.commit = func() {
				snapshot, dirty, cleared := state.snapshot()
				ctx := r.Context()
				switch {
				case cleared:
					if haveID {
						if err := manager.Destroy(ctx, sid); err != nil {
							log.Printf("sealbox: middleware destroy failed: %v", err)
						}
					}
					http.SetCookie(w, opts.expired())
				case dirty && haveID:
					if err := manager.Save(ctx, sid, snapshot); err != nil {
						log.Printf("sealbox: middleware save failed: %v", err)
					}
				case dirty:
					newID, err := manager.Create(ctx, snapshot)
					if err != nil {
						log.Printf("sealbox: middleware create failed: %v", err)
						return
					}
					http.SetCookie(w, opts.cookie(newID.String()))
				case badCookie:
					http.SetCookie(w, opts.expired())
				}
			}

			ctx := context.WithValue(r.Context(), stateContextKey{}, state)
			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.runCommit()
		})
	}
}
