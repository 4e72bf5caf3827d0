/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package instrumentation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	apimetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

type quantbenchMeter struct {
	ExitCode        int
	Command         string
	Version         string
	OS              string
	Arch            string
	Model           string
	EnumFlags       map[string]string
	ChatTurns       int
	ToolCalls       int
	IngestedDocs    int
	BacktestRuns    int
	FilesImported   int
	RowsCopied      int64
	FailedBatches   int
	ChatSeconds     []float64
	BacktestSeconds []float64
	StartTime       time.Time
	Duration        time.Duration
	ErrorCode       qErrors.StatusCode
}

var (
	meter = quantbenchMeter{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		EnumFlags: map[string]string{},
		StartTime: time.Now(),
		Version:   version.Get().Version,
		ExitCode:  0,
		ErrorCode: qErrors.OK,
	}
	meterMutex          sync.Mutex
	shouldExportMetrics = os.Getenv(constants.ExportMetricsEnvVariable) == "true"
	meteredCommands     = util.NewStringSet()
	doesChat            = util.NewStringSet()
	doesBacktest        = util.NewStringSet()
	doesImport          = util.NewStringSet()
	initExporter        = initStdoutExporterMetrics
)

func init() {
	meteredCommands.Insert("gateway", "engine", "import", "backtest")
	doesChat.Insert("gateway")
	doesBacktest.Insert("gateway", "engine", "backtest")
	doesImport.Insert("import")
}

func InitMeterFromConfig(config *latest.QuantbenchConfig) {
	meter.Model = config.Agent.Model
}

func SetCommand(cmd string) {
	if meteredCommands.Contains(cmd) {
		meter.Command = cmd
	}
}

func SetErrorCode(errorCode qErrors.StatusCode) {
	meter.ErrorCode = errorCode
}

// AddChatTurn counts one completed chat turn.
func AddChatTurn() {
	meterMutex.Lock()
	meter.ChatTurns++
	meterMutex.Unlock()
}

// AddToolCall counts one tool invocation made by the agent.
func AddToolCall() {
	meterMutex.Lock()
	meter.ToolCalls++
	meterMutex.Unlock()
}

// AddIngestedDoc counts one document stored in the knowledge base.
func AddIngestedDoc() {
	meterMutex.Lock()
	meter.IngestedDocs++
	meterMutex.Unlock()
}

// AddBacktestRun counts one backtest run.
func AddBacktestRun() {
	meterMutex.Lock()
	meter.BacktestRuns++
	meterMutex.Unlock()
}

// AddImportedFiles counts the tick files of one committed batch and the rows
// its COPY wrote.
func AddImportedFiles(files int, rows int64) {
	meterMutex.Lock()
	meter.FilesImported += files
	meter.RowsCopied += rows
	meterMutex.Unlock()
}

// AddFailedBatch counts one import batch that was rolled back.
func AddFailedBatch() {
	meterMutex.Lock()
	meter.FailedBatches++
	meterMutex.Unlock()
}

// RecordChatLatency records the wall time of one chat turn.
func RecordChatLatency(d time.Duration) {
	meterMutex.Lock()
	meter.ChatSeconds = append(meter.ChatSeconds, d.Seconds())
	meterMutex.Unlock()
}

// RecordBacktestDuration records the wall time of one backtest run.
func RecordBacktestDuration(d time.Duration) {
	meterMutex.Lock()
	meter.BacktestSeconds = append(meter.BacktestSeconds, d.Seconds())
	meterMutex.Unlock()
}

func AddFlag(flag *flag.Flag) {
	if flag.Changed {
		meter.EnumFlags[flag.Name] = flag.Value.String()
	}
}

// ShutdownAndFlush pushes any remaining metrics and trace spans before the
// process exits. Errors only get logged, a failed flush never changes the
// exit code.
func ShutdownAndFlush(ctx context.Context, exitCode int) {
	if err := ExportMetrics(exitCode); err != nil {
		log.Entry(ctx).Debugf("error exporting metrics %v", err)
	}
	if err := TracerShutdown(ctx); err != nil {
		log.Entry(ctx).Debugf("error shutting down tracer %v", err)
	}
}

func ExportMetrics(exitCode int) error {
	if !shouldExportMetrics || meter.Command == "" {
		return nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return fmt.Errorf("retrieving home directory: %w", err)
	}
	meter.ExitCode = exitCode
	meter.Duration = time.Since(meter.StartTime)
	return exportMetrics(context.Background(),
		filepath.Join(home, constants.DefaultQuantbenchDir, constants.DefaultMetricFile),
		meter)
}

// exportMetrics flushes the current and any previously saved meters through
// the exporter. Without an exporter the meters accumulate in filename until
// a later run can flush them.
func exportMetrics(ctx context.Context, filename string, meter quantbenchMeter) error {
	log.Entry(ctx).Debug("exporting metrics")
	exporter, err := initExporter()
	if err != nil {
		return err
	}

	b, err := os.ReadFile(filename)
	fileExists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	var meters []quantbenchMeter
	err = json.Unmarshal(b, &meters)
	if err != nil {
		meters = []quantbenchMeter{}
	}
	meters = append(meters, meter)
	if exporter == nil {
		b, _ = json.Marshal(meters)
		return os.WriteFile(filename, b, 0666)
	}

	start := time.Now()
	p := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	m := p.Meter("quantbench")
	for _, qm := range meters {
		createMetrics(ctx, m, qm)
	}
	if err := p.Shutdown(ctx); err != nil {
		return err
	}
	log.Entry(ctx).Debugf("metrics export complete in %s", time.Since(start).String())

	if fileExists {
		return os.Remove(filename)
	}
	return nil
}

// initStdoutExporterMetrics returns a nil exporter when metrics should only
// accumulate on disk.
func initStdoutExporterMetrics() (sdkmetric.Exporter, error) {
	if _, ok := os.LookupEnv(constants.ExportToStdoutEnvVariable); !ok {
		return nil, nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return stdoutmetric.New(stdoutmetric.WithEncoder(enc))
}

func createMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter) {
	// A metric is uniquely identified by its name and its labels. This random
	// label differentiates meters recorded by concurrent runs.
	randLabel := attribute.String("randomizer", strconv.Itoa(rand.Intn(75000)))

	labels := []attribute.KeyValue{
		attribute.String("version", meter.Version),
		attribute.String("os", meter.OS),
		attribute.String("arch", meter.Arch),
		attribute.String("command", meter.Command),
		attribute.String("error", string(meter.ErrorCode)),
		randLabel,
	}

	runCounter, _ := m.Int64Counter("launches", apimetric.WithDescription("Quantbench invocations"))
	runCounter.Add(ctx, 1, apimetric.WithAttributes(labels...))

	durationRecorder, _ := m.Float64Histogram("launch/duration",
		apimetric.WithDescription("durations of quantbench commands in seconds"))
	durationRecorder.Record(ctx, meter.Duration.Seconds(), apimetric.WithAttributes(labels...))

	if meter.Command != "" {
		commandMetrics(ctx, m, meter, randLabel)
		if doesChat.Contains(meter.Command) {
			chatMetrics(ctx, m, meter, randLabel)
		}
		if doesBacktest.Contains(meter.Command) {
			backtestMetrics(ctx, m, meter, randLabel)
		}
		if doesImport.Contains(meter.Command) {
			importMetrics(ctx, m, meter, randLabel)
		}
	}

	if meter.ErrorCode != qErrors.OK && meter.ErrorCode != "" {
		errorMetrics(ctx, m, meter, randLabel)
	}
}

func commandMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter, randLabel attribute.KeyValue) {
	commandCounter, _ := m.Int64Counter(meter.Command,
		apimetric.WithDescription(fmt.Sprintf("Number of times %s is used", meter.Command)))
	commandCounter.Add(ctx, 1, apimetric.WithAttributes(
		attribute.String("error", string(meter.ErrorCode)),
		randLabel,
	))
}

func chatMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter, randLabel attribute.KeyValue) {
	modelLabel := attribute.String("model", meter.Model)

	turnCounter, _ := m.Int64Counter("chat/turns", apimetric.WithDescription("Chat turns served"))
	turnCounter.Add(ctx, int64(meter.ChatTurns), apimetric.WithAttributes(modelLabel, randLabel))

	toolCounter, _ := m.Int64Counter("chat/tool_calls", apimetric.WithDescription("Tool calls made by the agent"))
	toolCounter.Add(ctx, int64(meter.ToolCalls), apimetric.WithAttributes(modelLabel, randLabel))

	ingestCounter, _ := m.Int64Counter("chat/ingested_docs", apimetric.WithDescription("Documents ingested into the knowledge base"))
	ingestCounter.Add(ctx, int64(meter.IngestedDocs), apimetric.WithAttributes(modelLabel, randLabel))

	latencyRecorder, _ := m.Float64Histogram("chat/latency",
		apimetric.WithDescription("durations of chat turns in seconds"))
	for _, s := range meter.ChatSeconds {
		latencyRecorder.Record(ctx, s, apimetric.WithAttributes(modelLabel, randLabel))
	}
}

func backtestMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter, randLabel attribute.KeyValue) {
	runCounter, _ := m.Int64Counter("backtests", apimetric.WithDescription("Backtest runs"))
	runCounter.Add(ctx, int64(meter.BacktestRuns), apimetric.WithAttributes(randLabel))

	durationRecorder, _ := m.Float64Histogram("backtest/duration",
		apimetric.WithDescription("durations of backtest runs in seconds"))
	for _, s := range meter.BacktestSeconds {
		durationRecorder.Record(ctx, s, apimetric.WithAttributes(randLabel))
	}
}

func importMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter, randLabel attribute.KeyValue) {
	fileCounter, _ := m.Int64Counter("import/files", apimetric.WithDescription("Tick files imported"))
	fileCounter.Add(ctx, int64(meter.FilesImported), apimetric.WithAttributes(randLabel))

	rowCounter, _ := m.Int64Counter("import/rows", apimetric.WithDescription("Tick rows copied"))
	rowCounter.Add(ctx, meter.RowsCopied, apimetric.WithAttributes(randLabel))

	failedCounter, _ := m.Int64Counter("import/failed_batches", apimetric.WithDescription("Import batches rolled back"))
	failedCounter.Add(ctx, int64(meter.FailedBatches), apimetric.WithAttributes(randLabel))
}

func errorMetrics(ctx context.Context, m apimetric.Meter, meter quantbenchMeter, randLabel attribute.KeyValue) {
	errCounter, _ := m.Int64Counter("errors", apimetric.WithDescription("Quantbench errors"))
	errCounter.Add(ctx, 1, apimetric.WithAttributes(
		attribute.String("error", string(meter.ErrorCode)),
		randLabel,
	))

	commandLabel := attribute.String("command", meter.Command)

	switch meter.ErrorCode {
	case qErrors.UnknownError:
		unknownCounter, _ := m.Int64Counter("errors/unknown", apimetric.WithDescription("Unknown quantbench errors"))
		unknownCounter.Add(ctx, 1, apimetric.WithAttributes(randLabel))
	case qErrors.ChatUnknown:
		unknownCounter, _ := m.Int64Counter("chat/unknown", apimetric.WithDescription("Unknown chat errors"))
		unknownCounter.Add(ctx, 1, apimetric.WithAttributes(commandLabel, randLabel))
	case qErrors.BacktestUnknown:
		unknownCounter, _ := m.Int64Counter("backtest/unknown", apimetric.WithDescription("Unknown backtest errors"))
		unknownCounter.Add(ctx, 1, apimetric.WithAttributes(commandLabel, randLabel))
	case qErrors.ImportUnknown:
		unknownCounter, _ := m.Int64Counter("import/unknown", apimetric.WithDescription("Unknown import errors"))
		unknownCounter.Add(ctx, 1, apimetric.WithAttributes(commandLabel, randLabel))
	}
}
