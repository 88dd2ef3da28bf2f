package ctx

import (
	"context"

	"github.com/confhub/confhub/pkg/cache"
	"github.com/confhub/confhub/pkg/log"
)

// Context carries the process-wide collaborators handed to every layer.
type Context struct {
	Ctx   context.Context
	Log   log.ILogger
	Cache cache.ICache
}

func NewContext(ctx context.Context, c cache.ICache, log log.ILogger) *Context {
	return &Context{
		Ctx:   ctx,
		Log:   log,
		Cache: c,
	}
}

func (c *Context) GetCtx() context.Context {
	return c.Ctx
}
