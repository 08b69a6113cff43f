package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// FrameUpdate is the payload of a "frame" SSE event
type FrameUpdate struct {
	FrameNumber     int     `json:"frameNumber"`
	TotalFrames     int     `json:"totalFrames"`
	ImageData       string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs       int64   `json:"elapsedMs"`
	FrameMs         int64   `json:"frameMs"`
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	Weight          float32 `json:"weight"`
	MeanLuminance   float64 `json:"meanLuminance"`
	AverageBounces  float64 `json:"averageBounces"`
	Misses          int     `json:"misses"`
	Absorptions     int     `json:"absorptions"`
	Truncations     int     `json:"truncations"`
	PrimitiveCount  int     `json:"primitiveCount"`
	IsLast          bool    `json:"isLast"`
}

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	FrameNumber int    `json:"frameNumber"`
	TileNumber  int    `json:"tileNumber"` // Current tile number in this frame (1-based)
	TotalTiles  int    `json:"totalTiles"` // Total number of tiles in the image
	Scale       int    `json:"scale"`
}

// FrameDiscard tells the client to drop the tile previews of a failed frame
type FrameDiscard struct {
	FrameNumber int `json:"frameNumber"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "discard", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and renderer
type RenderingPipeline struct {
	Scene    *scene.Scene
	Renderer *renderer.ProgressiveRenderer
}

// handleRender handles progressive rendering with real-time frame streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)

	// Single SSE writer goroutine. The handler must not return while it
	// still holds w, so shutdown closes the channel and waits for it.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()

	consoleCtx, stopConsole := context.WithCancel(ctx)
	var producers sync.WaitGroup
	defer func() {
		stopConsole()
		producers.Wait()
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	producers.Add(1)
	go func() {
		defer producers.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	renderOptions := renderer.RenderOptions{TileUpdates: req.Tiles}
	frameChan, tileChan, errChan := pipeline.Renderer.RenderProgressive(ctx, renderOptions)

	s.handleRenderingEvents(ctx, sseEventChan, frameChan, tileChan, errChan, pipeline.Scene, req, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for event := range sseEventChan {
		// A client that went away gets nothing more, but the channel is
		// still drained so producers never block
		if ctx.Err() != nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards logger output to the SSE channel until ctx ends
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates and configures the scene and renderer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, err
	}

	policy, err := renderer.ParseBlendPolicy(req.Policy, float32(req.Alpha))
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = DefaultTileSize
	config.MaxFrames = req.Frames
	config.Seed = req.Seed
	config.Policy = policy

	pr, err := renderer.NewProgressiveRenderer(sceneObj, req.Width, req.Height, config, logger)
	if err != nil {
		return nil, err
	}
	return &RenderingPipeline{
		Scene:    sceneObj,
		Renderer: pr,
	}, nil
}

// handleRenderingEvents streams frames and tiles until the renderer closes
// its channels, then reports the final outcome
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	frameChan <-chan renderer.FrameResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sceneObj *scene.Scene, req *RenderRequest, startTime time.Time) {

	lastFrame := startTime
	for frameChan != nil || tileChan != nil {
		select {
		case frameResult, ok := <-frameChan:
			if !ok {
				frameChan = nil
				continue
			}
			s.handleFrameComplete(ctx, sseEventChan, frameResult, req, sceneObj, startTime, time.Since(lastFrame))
			lastFrame = time.Now()

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult, req.Scale)

		case <-ctx.Done():
			return
		}
	}

	if err := <-errChan; err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handleFrameComplete encodes a committed frame and sends it as a "frame" event
func (s *Server) handleFrameComplete(ctx context.Context, sseEventChan chan SSEEvent, frameResult renderer.FrameResult,
	req *RenderRequest, sceneObj *scene.Scene, startTime time.Time, frameTime time.Duration) {
	if ctx.Err() != nil {
		return
	}

	imageData, err := s.imageToBase64PNG(scaleImage(frameResult.Image, req.Scale))
	if err != nil {
		log.Printf("Error encoding frame %d: %v", frameResult.FrameNumber, err)
		return
	}

	stats := frameResult.Stats
	update := FrameUpdate{
		FrameNumber:     frameResult.FrameNumber,
		TotalFrames:     req.Frames,
		ImageData:       imageData,
		ElapsedMs:       time.Since(startTime).Milliseconds(),
		FrameMs:         frameTime.Milliseconds(),
		TotalPixels:     stats.TotalPixels,
		TotalSamples:    stats.TotalSamples,
		SamplesPerPixel: stats.SamplesPerPixel,
		Weight:          stats.Weight,
		MeanLuminance:   stats.MeanLuminance,
		AverageBounces:  stats.Trace.AverageBounces(),
		Misses:          stats.Trace.Misses,
		Absorptions:     stats.Trace.Absorptions,
		Truncations:     stats.Trace.Truncations,
		PrimitiveCount:  sceneObj.GetPrimitiveCount(),
		IsLast:          frameResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult, scale int) {
	if ctx.Err() != nil {
		return
	}

	if tileResult.Discarded {
		data, err := json.Marshal(FrameDiscard{FrameNumber: tileResult.FrameNumber})
		if err != nil {
			log.Printf("Error marshaling frame discard: %v", err)
			return
		}
		select {
		case sseEventChan <- SSEEvent{Type: "discard", Data: string(data)}:
		case <-ctx.Done():
		}
		return
	}

	tileData, err := s.imageToBase64PNG(scaleImage(tileResult.TileImage, scale))
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		FrameNumber: tileResult.FrameNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		Scale:       max(scale, 1),
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.Frames, err = parseIntParam(query, "frames", renderer.DefaultProgressiveConfig().MaxFrames, 1, MaxFrames); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, MinDepth, MaxDepth); err != nil {
		return nil, err
	}
	if req.Alpha, err = parseFloatParam(query, "alpha", 0.1, 0.001, 1); err != nil {
		return nil, err
	}
	if req.Scale, err = parseIntParam(query, "scale", 1, 1, MaxScale); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 1, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = uint64(seed)
	req.Policy = query.Get("policy")
	req.Tiles = query.Get("tiles") == "true"

	if _, err := renderer.ParseBlendPolicy(req.Policy, float32(req.Alpha)); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 64 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
