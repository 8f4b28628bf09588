package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/internal/utils"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
	"github.com/kacperjurak/goarraycore/pkg/worker"
)

// BatchHandler runs gap and frequency sweeps through the worker pool
type BatchHandler struct {
	config     *config.Config
	workerPool *worker.Pool
	batches    sync.WaitGroup
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(cfg *config.Config, pool *worker.Pool) *BatchHandler {
	return &BatchHandler{
		config:     cfg,
		workerPool: pool,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setupCORS(w, "application/json")
	if !preflight(w, r) {
		return
	}

	batch := models.BatchRequest{Base: baseRequest(h.config)}
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(batch.GapWavelengths) == 0 && len(batch.Frequencies) == 0 {
		writeError(w, "No gaps or frequencies provided in batch", http.StatusBadRequest)
		return
	}
	if batch.BatchID == "" {
		batch.BatchID = utils.GenerateID()
	}

	requests := processing.Expand(batch)
	log.Printf("🔄 Batch processing started - ID: %s, Items: %d", batch.BatchID, len(requests))

	h.batches.Add(1)
	go h.processBatchAsync(batch.BatchID, requests)

	response := map[string]interface{}{
		"success":  true,
		"batch_id": batch.BatchID,
		"items":    len(requests),
		"message":  "Batch processing started with worker pool",
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

// Wait blocks until every running batch has written its timing results or
// ctx is done.
func (h *BatchHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.batches.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processBatchAsync submits every item and collects the results. When the
// pool stops first, the replies already sent are kept and the rest count as
// failed items.
func (h *BatchHandler) processBatchAsync(batchID string, requests []models.FieldRequest) {
	defer h.batches.Done()

	batchStartTime := time.Now()
	timings := make([]models.SweepTiming, len(requests))
	reply := make(chan models.WorkResult, len(requests))

	submitted := 0
	for i, req := range requests {
		timings[i].Iteration = i
		err := h.workerPool.SubmitJob(models.WorkItem{
			ID:        i,
			RequestID: utils.GenerateID(),
			BatchID:   batchID,
			Iteration: i,
			Request:   req,
			Config:    h.config,
			StartTime: time.Now(),
			Reply:     reply,
		})
		if err != nil {
			log.Printf("⚠️  Batch %s stopped after %d of %d items: %v", batchID, submitted, len(requests), err)
			break
		}
		submitted++
	}

	received := 0
collect:
	for received < submitted {
		select {
		case result := <-reply:
			h.processResult(result, timings)
			received++
		case <-h.workerPool.Done():
			for received < submitted {
				select {
				case result := <-reply:
					h.processResult(result, timings)
					received++
				default:
					log.Printf("⚠️  Batch %s: worker pool stopped with %d items unfinished", batchID, submitted-received)
					break collect
				}
			}
		}
	}

	totalBatchTime := time.Since(batchStartTime)
	h.saveTimingResults(batchID, totalBatchTime, timings[:submitted], h.workerPool.Workers())

	log.Printf("🎉 Batch processing completed - ID: %s, Total time: %v", batchID, totalBatchTime)
}

// processResult records timing and queues the webhook
func (h *BatchHandler) processResult(result models.WorkResult, timings []models.SweepTiming) {
	peak := 0.0
	if result.Result.Beam != nil {
		peak = result.Result.Beam.PeakValue
	}
	timings[result.Iteration] = models.SweepTiming{
		Iteration:      result.Iteration,
		ProcessingTime: result.ProcessingTime,
		PeakValue:      peak,
		Success:        result.Success,
		Mode:           result.Result.Mode,
	}

	h.workerPool.QueueWebhook(models.WebhookItem{
		RequestID: utils.SweepItemID(result.RequestID, result.Iteration),
		BatchID:   result.BatchID,
		Iteration: result.Iteration,
		Result:    result.Result,
	})

	if !h.config.Quiet {
		if result.Success {
			log.Printf("✅ Processed sweep item %d", result.Iteration)
		} else {
			log.Printf("❌ Sweep item %d failed: %s", result.Iteration, result.Result.Error)
		}
	}
}

// saveTimingResults appends batch statistics to TimingFile, or logs them
// when no file is configured.
func (h *BatchHandler) saveTimingResults(batchID string, totalTime time.Duration, timings []models.SweepTiming, concurrency int) {
	if h.config.TimingFile == "" {
		stats := summarize(totalTime, timings, concurrency)
		log.Printf("📊 Timing: %d items, %d goroutines, %.2f ms total, %.2f%% success, %.3f efficiency",
			len(timings), concurrency, ms(totalTime), stats.successRate, stats.efficiency)
		return
	}

	var writeHeader bool
	if _, err := os.Stat(h.config.TimingFile); os.IsNotExist(err) {
		writeHeader = true
	}

	file, err := os.OpenFile(h.config.TimingFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Error opening timing file: %v", err)
		return
	}
	defer file.Close()

	if err := writeTimingCSV(file, writeHeader, batchID, totalTime, timings, concurrency); err != nil {
		log.Printf("Error writing timing record: %v", err)
		return
	}
	log.Printf("📊 Timing saved to %s: %d items, %d goroutines, %.2f ms total",
		h.config.TimingFile, len(timings), concurrency, ms(totalTime))
}

type timingStats struct {
	avg, min, max time.Duration
	successRate   float64
	avgPeak       float64
	itemsPerSec   float64
	efficiency    float64
}

func summarize(totalTime time.Duration, timings []models.SweepTiming, concurrency int) timingStats {
	var s timingStats
	if len(timings) == 0 {
		return s
	}

	var total time.Duration
	var successful int
	s.min = time.Hour
	for _, t := range timings {
		total += t.ProcessingTime
		s.min = min(s.min, t.ProcessingTime)
		s.max = max(s.max, t.ProcessingTime)
		if t.Success {
			successful++
			s.avgPeak += t.PeakValue
		}
	}

	n := len(timings)
	s.avg = total / time.Duration(n)
	s.successRate = float64(successful) / float64(n) * 100
	if successful > 0 {
		s.avgPeak /= float64(successful)
	}
	if totalTime > 0 {
		s.itemsPerSec = float64(n) / totalTime.Seconds()
		// 1.0 is a linear speedup over the workers
		s.efficiency = total.Seconds() / totalTime.Seconds() / float64(max(concurrency, 1))
	}
	return s
}

func writeTimingCSV(w io.Writer, writeHeader bool, batchID string, totalTime time.Duration, timings []models.SweepTiming, concurrency int) error {
	writer := csv.NewWriter(w)

	if writeHeader {
		header := []string{
			"Timestamp",
			"BatchID",
			"TotalItems",
			"Concurrency",
			"TotalBatchTime_ms",
			"AvgItemTime_ms",
			"MinItemTime_ms",
			"MaxItemTime_ms",
			"SuccessRate",
			"AvgPeak",
			"ItemsPerSecond",
			"EfficiencyScore",
			"Mode",
		}
		if err := writer.Write(header); err != nil {
			return err
		}
	}

	s := summarize(totalTime, timings, concurrency)
	mode := "Unknown"
	if len(timings) > 0 && timings[0].Mode != "" {
		mode = timings[0].Mode
	}

	record := []string{
		time.Now().Format(time.RFC3339),
		batchID,
		fmt.Sprintf("%d", len(timings)),
		fmt.Sprintf("%d", concurrency),
		fmt.Sprintf("%.2f", ms(totalTime)),
		fmt.Sprintf("%.2f", ms(s.avg)),
		fmt.Sprintf("%.2f", ms(s.min)),
		fmt.Sprintf("%.2f", ms(s.max)),
		fmt.Sprintf("%.1f", s.successRate),
		fmt.Sprintf("%.6e", s.avgPeak),
		fmt.Sprintf("%.2f", s.itemsPerSec),
		fmt.Sprintf("%.3f", s.efficiency),
		mode,
	}
	if err := writer.Write(record); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000000.0
}
