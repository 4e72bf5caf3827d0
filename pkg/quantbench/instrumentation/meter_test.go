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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	qErrors "github.com/quantbench/quantbench/pkg/quantbench/errors"
	"github.com/quantbench/quantbench/testutil"
)

func TestExportMetricsSkipped(t *testing.T) {
	tests := []struct {
		name    string
		export  bool
		command string
	}{
		{
			name:    "metrics collection disabled",
			export:  false,
			command: "gateway",
		},
		{
			name:   "command is not metered",
			export: true,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.name, func(t *testutil.T) {
			t.Override(&shouldExportMetrics, test.export)
			t.Override(&meter, quantbenchMeter{Command: test.command})

			t.CheckNoError(ExportMetrics(0))
		})
	}
}

func TestOfflineExportMetrics(t *testing.T) {
	startTime, _ := time.Parse(time.ANSIC, "Mon Jan 2 15:04:05 -0700 MST 2006")
	validMeter := quantbenchMeter{
		Command:       "import",
		FilesImported: 5,
		RowsCopied:    6200,
		Version:       "vTest.0",
		Arch:          "test arch",
		OS:            "test os",
		EnumFlags:     map[string]string{"test": "test_value"},
		StartTime:     startTime,
		Duration:      time.Minute,
	}
	validMeterBytes, _ := json.Marshal(validMeter)

	tests := []struct {
		name                string
		meter               quantbenchMeter
		savedMetrics        []byte
		shouldFailUnmarshal bool
	}{
		{
			name:  "saves meter to a new file",
			meter: validMeter,
		},
		{
			name: "meter is appended to previously saved metrics",
			meter: quantbenchMeter{
				Command:      "gateway",
				Version:      "vTest.1",
				Arch:         "test arch 2",
				OS:           "test os 2",
				Model:        "deepseek-chat",
				ChatTurns:    7,
				ToolCalls:    2,
				BacktestRuns: 2,
				EnumFlags:    map[string]string{"test_run": "test_run_value"},
				ErrorCode:    qErrors.ChatLLMRateLimited,
				StartTime:    startTime.Add(time.Hour * 24 * 30),
				Duration:     time.Minute,
			},
			savedMetrics: validMeterBytes,
		},
		{
			name:                "meter does not re-save invalid metrics",
			meter:               validMeter,
			savedMetrics:        []byte("[{\"Command\":\"run\", Invalid\": 10000000000010202301230}]"),
			shouldFailUnmarshal: true,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.name, func(t *testutil.T) {
			t.Override(&initExporter, func() (sdkmetric.Exporter, error) { return nil, nil })
			filename := "metrics"
			tmp := t.NewTempDir()
			var savedMetrics []quantbenchMeter
			_ = json.Unmarshal(test.savedMetrics, &savedMetrics)

			if len(test.savedMetrics) > 0 {
				if err := os.WriteFile(tmp.Path(filename), test.savedMetrics, 0666); err != nil {
					t.Error(err)
				}
			}
			_ = exportMetrics(context.Background(), tmp.Path(filename), test.meter)

			b, _ := os.ReadFile(tmp.Path(filename))
			var actual []quantbenchMeter
			_ = json.Unmarshal(b, &actual)
			expected := append(savedMetrics, test.meter)
			if test.shouldFailUnmarshal {
				expected = []quantbenchMeter{test.meter}
			}
			t.CheckDeepEqual(expected, actual)
		})
	}
}

func TestMeterAccumulators(t *testing.T) {
	testutil.Run(t, "counters and samples accumulate on the meter", func(t *testutil.T) {
		t.Override(&meter, quantbenchMeter{})

		AddChatTurn()
		AddToolCall()
		AddIngestedDoc()
		AddIngestedDoc()
		AddBacktestRun()
		AddImportedFiles(3, 600)
		AddImportedFiles(2, 150)
		AddFailedBatch()
		RecordChatLatency(1500 * time.Millisecond)
		RecordBacktestDuration(250 * time.Millisecond)

		t.CheckDeepEqual(1, meter.ChatTurns)
		t.CheckDeepEqual(1, meter.ToolCalls)
		t.CheckDeepEqual(2, meter.IngestedDocs)
		t.CheckDeepEqual(1, meter.BacktestRuns)
		t.CheckDeepEqual(5, meter.FilesImported)
		t.CheckDeepEqual(int64(750), meter.RowsCopied)
		t.CheckDeepEqual(1, meter.FailedBatches)
		t.CheckDeepEqual([]float64{1.5}, meter.ChatSeconds)
		t.CheckDeepEqual([]float64{0.25}, meter.BacktestSeconds)
	})
}

func TestExportMetricsFlushesSavedMeters(t *testing.T) {
	testutil.Run(t, "flush to exporter and clear the offline file", func(t *testutil.T) {
		var buf bytes.Buffer
		t.Override(&initExporter, func() (sdkmetric.Exporter, error) {
			return stdoutmetric.New(stdoutmetric.WithEncoder(json.NewEncoder(&buf)))
		})
		tmp := t.NewTempDir()
		saved, _ := json.Marshal([]quantbenchMeter{{
			Command:         "gateway",
			Model:           "deepseek-chat",
			ChatTurns:       3,
			IngestedDocs:    1,
			ChatSeconds:     []float64{0.8, 1.2},
			BacktestSeconds: []float64{0.3},
			Version:         "vTest.0",
		}})
		tmp.WriteBytes("metrics", saved)

		err := exportMetrics(context.Background(), tmp.Path("metrics"), quantbenchMeter{
			Command:       "import",
			FilesImported: 2,
			RowsCopied:    1200,
			FailedBatches: 1,
		})

		t.CheckNoError(err)
		_, statErr := os.Stat(tmp.Path("metrics"))
		t.CheckTrue(os.IsNotExist(statErr))
		t.CheckContains("launches", buf.String())
		t.CheckContains("chat/turns", buf.String())
		t.CheckContains("chat/ingested_docs", buf.String())
		t.CheckContains("chat/latency", buf.String())
		t.CheckContains("backtest/duration", buf.String())
		t.CheckContains("import/rows", buf.String())
		t.CheckContains("import/failed_batches", buf.String())
	})
}
