// Package debug serves an HTTP inspector over the objects of an
// injector.Container. Every read and write goes through a ValueInjector, so
// unexported state is visible and writable. Never expose it publicly.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/iocgo/injector"
	"github.com/iocgo/injector/errors"
)

type Inspector struct {
	container *injector.Container
	logger    *zap.Logger
}

func New(container *injector.Container, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{container, logger}
}

// Handler returns an engine with the inspector routes mounted at the root.
func (i *Inspector) Handler() *gin.Engine {
	engine := gin.New()
	engine.Use(i.AccessLog(), gin.Recovery())
	i.Register(engine)
	return engine
}

// Register mounts the routes on r. The optional query parameter "context"
// of every object route overrides the access context.
func (i *Inspector) Register(r gin.IRouter) {
	r.GET("/objects", i.list)
	r.GET("/objects/:name", i.object)
	r.GET("/objects/:name/fields/:field", i.getField)
	r.PUT("/objects/:name/fields/:field", i.setField)
	r.POST("/objects/:name/methods/:method", i.call)
}

func (i *Inspector) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
			i.logger.Warn("[INSPECT]", fields...)
			return
		}
		i.logger.Info("[INSPECT]", fields...)
	}
}

func (i *Inspector) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"objects": i.container.Names()})
}

func (i *Inspector) injector(c *gin.Context) (*injector.ValueInjector, bool) {
	vi, err := i.container.Injector(c.Param("name"), c.Query("context"))
	if err != nil {
		abort(c, err)
		return nil, false
	}
	return vi, true
}

func (i *Inspector) object(c *gin.Context) {
	vi, ok := i.injector(c)
	if !ok {
		return
	}

	names, err := vi.Fields()
	if err != nil {
		abort(c, err)
		return
	}

	values := make(map[string]any, len(names))
	failed := make(map[string]string)
	for _, name := range names {
		value, err := vi.GetValue(name)
		if err != nil {
			failed[name] = err.Error()
			continue
		}
		values[name] = encodable(value)
	}

	c.JSON(http.StatusOK, gin.H{
		"type":    fmt.Sprintf("%T", vi.GetObject()),
		"context": vi.GetObjectContext(),
		"fields":  values,
		"errors":  failed,
	})
}

func (i *Inspector) getField(c *gin.Context) {
	vi, ok := i.injector(c)
	if !ok {
		return
	}

	value, err := vi.GetValue(c.Param("field"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": encodable(value)})
}

func (i *Inspector) setField(c *gin.Context) {
	vi, ok := i.injector(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}

	raw := gjson.GetBytes(body, "value")
	if !raw.Exists() {
		abort(c, fmt.Errorf("%w: body needs a \"value\" key", errors.ErrInvalidArgument))
		return
	}

	name := c.Param("field")
	typ, err := vi.FieldType(name)
	if err != nil {
		abort(c, err)
		return
	}

	value, err := decode(raw, typ)
	if err != nil {
		abort(c, err)
		return
	}

	if _, err = vi.SetValue(name, value); err != nil {
		abort(c, err)
		return
	}

	i.logger.Info("field injected",
		zap.String("object", c.Param("name")),
		zap.String("field", name),
		zap.String("context", vi.GetObjectContext()))
	c.JSON(http.StatusOK, gin.H{"value": encodable(value)})
}

func (i *Inspector) call(c *gin.Context) {
	vi, ok := i.injector(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
		return
	}

	name := c.Param("method")
	typ, err := vi.MethodType(name)
	if err != nil {
		abort(c, err)
		return
	}

	args, err := arguments(gjson.GetBytes(body, "args").Array(), typ)
	if err != nil {
		abort(c, err)
		return
	}

	out, err := vi.Call(name, args...)
	if err != nil {
		abort(c, err)
		return
	}

	for idx := range out {
		out[idx] = encodable(out[idx])
	}
	c.JSON(http.StatusOK, gin.H{"out": out})
}

// arguments decodes JSON arguments into the parameter types of typ.
func arguments(raw []gjson.Result, typ reflect.Type) ([]any, error) {
	n := typ.NumIn()
	args := make([]any, len(raw))
	for idx, r := range raw {
		var param reflect.Type
		switch {
		case typ.IsVariadic() && idx >= n-1:
			param = typ.In(n - 1).Elem()
		case idx < n:
			param = typ.In(idx)
		default:
			return nil, fmt.Errorf("%w: %d arguments for %s", errors.ErrInvalidArgument, len(raw), typ)
		}

		value, err := decode(r, param)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx+1, err)
		}
		args[idx] = value
	}
	return args, nil
}

func decode(raw gjson.Result, typ reflect.Type) (any, error) {
	ptr := reflect.New(typ)
	if err := json.Unmarshal([]byte(raw.Raw), ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %s into %s: %v", errors.ErrInvalidArgument, raw.Raw, typ, err)
	}
	return ptr.Elem().Interface(), nil
}

// encodable replaces errors, which marshal to {}, by their message and
// values json cannot encode (chans, funcs, cycles) by their %v form.
func encodable(value any) any {
	if err, ok := value.(error); ok {
		return err.Error()
	}

	if _, err := json.Marshal(value); err != nil {
		return fmt.Sprintf("%v", value)
	}
	return value
}

func abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrNoSuchMember):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrNotAccessible):
		status = http.StatusForbidden
	case errors.Is(err, errors.ErrInvalidArgument), errors.Is(err, errors.ErrUnbound):
		status = http.StatusBadRequest
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
