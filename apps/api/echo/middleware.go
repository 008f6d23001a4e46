package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kipawa/jaribio/core"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// cachingWriter tees the response body so it can be stored after the handler
// has written it; what gets cached is exactly what went out.
type cachingWriter struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (w *cachingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// cacheMiddleware memoizes GET responses under the request's path+query for
// the configured TTL. On a hit the cached payload is sent immediately and the
// handler never runs. Only 200 responses are captured. A nil cache degrades
// to pass-through; the cache is an optimization and must never fail a request.
//
// Apply it after any auth middleware, otherwise a hit would skip the auth check.
func cacheMiddleware(cache core.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if cache == nil || ctx.Request().Method != http.MethodGet {
				return next(ctx)
			}

			key := ctx.Request().RequestURI
			if payload, ok := cache.Get(key); ok {
				return ctx.JSONBlob(http.StatusOK, payload)
			}

			res := ctx.Response()
			w := &cachingWriter{ResponseWriter: res.Writer, body: new(bytes.Buffer)}
			res.Writer = w

			if err := next(ctx); err != nil {
				return err
			}
			if res.Status == http.StatusOK && w.body.Len() > 0 {
				cache.Set(key, w.body.Bytes(), core.Conf.Cache.TTL)
			}
			return nil
		}
	}
}
