package middleware

import (
	"context"
	"log"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
	"github.com/AyushSingh360/Aryan-portfolio/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

type RequestLogWriter interface {
	CreateBatch(ctx context.Context, logs []models.RequestLog) error
}

// RequestLogRecorder queues one row per request and writes them in batches
// from a single goroutine so the request path never waits on the database.
type RequestLogRecorder struct {
	writer     RequestLogWriter
	ch         chan models.RequestLog
	batchSize  int
	flushEvery time.Duration
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewRequestLogRecorder(writer RequestLogWriter, bufferSize int) *RequestLogRecorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	return &RequestLogRecorder{
		writer:     writer,
		ch:         make(chan models.RequestLog, bufferSize),
		batchSize:  100,
		flushEvery: 5 * time.Second,
		done:       make(chan struct{}),
	}
}

// Start runs the batch writer until ctx is cancelled or Stop is called, then
// flushes what is left. Wait blocks until that final flush is done.
func (r *RequestLogRecorder) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	go func() {
		defer close(r.done)

		batch := make([]models.RequestLog, 0, r.batchSize)
		ticker := time.NewTicker(r.flushEvery)
		defer ticker.Stop()

		flush := func() {
			if len(batch) == 0 {
				return
			}
			// Shutdown may already have cancelled ctx
			writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.writer.CreateBatch(writeCtx, batch); err != nil {
				log.Printf("Failed to insert %d request logs: %v", len(batch), err)
			}
			batch = make([]models.RequestLog, 0, r.batchSize)
		}

		for {
			select {
			case entry := <-r.ch:
				batch = append(batch, entry)
				if len(batch) >= r.batchSize {
					flush()
				}
			case <-ticker.C:
				flush()
			case <-ctx.Done():
				for {
					select {
					case entry := <-r.ch:
						batch = append(batch, entry)
					default:
						flush()
						return
					}
				}
			}
		}
	}()
}

func (r *RequestLogRecorder) Wait() {
	<-r.done
}

// Stop ends the batch writer and waits for the final flush. Call it after the
// HTTP server has drained so rows from in-flight requests are kept.
func (r *RequestLogRecorder) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.Wait()
}

func (r *RequestLogRecorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		caller := GetCallerID(c)
		if caller == "" {
			caller = CallerID(c.Request)
		}

		entry := models.RequestLog{
			RequestID:      GetRequestID(c),
			Timestamp:      start,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			CallerID:       ratelimit.Digest(caller),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case r.ch <- entry:
		default:
			log.Printf("[%s] request log buffer full, dropping entry", entry.RequestID)
		}
	}
}
