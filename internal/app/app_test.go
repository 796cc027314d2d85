package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/engine"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

func sweep(base float64, seconds float64) *common.AudioData {
	const rate = 22050
	pcm := make([]float64, int(seconds*rate))
	for i := range pcm {
		f := base * (1 + float64((i/(rate/2))%5)/5)
		pcm[i] = 0.3 * math.Sin(2*math.Pi*f*float64(i)/rate)
	}
	return &common.AudioData{PCM: pcm, SampleRate: rate, Channels: 1, Duration: time.Duration(seconds * float64(time.Second))}
}

func testLoader() engine.Loader {
	audio := map[string]*common.AudioData{
		"a.wav": sweep(220, 6),
		"b.wav": sweep(220, 6),
		"c.wav": sweep(370, 6),
	}
	return engine.LoaderFunc(func(ctx context.Context, input string) (*common.AudioData, time.Duration, error) {
		data, ok := audio[input]
		if !ok {
			return nil, 0, errors.New("no such input")
		}
		copied := *data
		copied.PCM = append([]float64(nil), data.PCM...)
		return &copied, 0, nil
	})
}

func newTestApp(t *testing.T, format string) (*App, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	app, err := NewAppWithConfig(&Context{
		OutputFormat: format,
		Stdout:       &out,
		Loader:       testLoader(),
	}, configs.GetDefaultConfig())
	require.NoError(t, err)
	return app, &out
}

func decodeMsgpack(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &m))
	return m
}

func TestNewAppOverrides(t *testing.T) {
	ctx := &Context{OutputFormat: "msgpack", Algorithm: "fp3", Loader: testLoader()}
	app, err := NewAppWithConfig(ctx, configs.GetDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "msgpack", app.config.OutputFormat)
	assert.Equal(t, fingerprint.FP3, app.engineConfig.Algorithm)
	assert.True(t, app.config.Output.Raw)
	assert.Same(t, app.config, ctx.Config)
	assert.NotNil(t, ctx.Logger)

	_, err = NewAppWithConfig(&Context{Algorithm: "fp8"}, configs.GetDefaultConfig())
	assert.Error(t, err)

	_, err = NewAppWithConfig(&Context{OutputFormat: "xml"}, configs.GetDefaultConfig())
	assert.Error(t, err)
}

func TestFingerprintSingle(t *testing.T) {
	app, out := newTestApp(t, "msgpack")

	require.NoError(t, app.Fingerprint(context.Background(), []string{"a.wav"}))

	m := decodeMsgpack(t, out.Bytes())
	assert.Equal(t, "a.wav", m["input"])
	assert.Equal(t, "File", m["kind"])
	assert.Equal(t, "fp2", m["algorithm"])
	assert.NotEmpty(t, m["fingerprint"])
	assert.NotEmpty(t, m["raw"])
	assert.Len(t, m["hash"], 8)
}

func TestFingerprintMany(t *testing.T) {
	app, out := newTestApp(t, "msgpack")

	require.NoError(t, app.Fingerprint(context.Background(), []string{"a.wav", "missing.wav"}))

	m := decodeMsgpack(t, out.Bytes())
	records, ok := m["fingerprints"].([]any)
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Contains(t, records[1].(map[string]any)["error"], "no such input")
}

func TestFingerprintAllFailed(t *testing.T) {
	app, _ := newTestApp(t, "msgpack")
	assert.Error(t, app.Fingerprint(context.Background(), []string{"missing.wav"}))
}

func TestFingerprintJSON(t *testing.T) {
	app, out := newTestApp(t, "json")

	require.NoError(t, app.Fingerprint(context.Background(), []string{"a.wav"}))
	assert.True(t, json.Valid(out.Bytes()))
	assert.Contains(t, out.String(), "a.wav")
}

func TestCompare(t *testing.T) {
	app, out := newTestApp(t, "msgpack")

	require.NoError(t, app.Compare(context.Background(), "a.wav", "b.wav"))
	m := decodeMsgpack(t, out.Bytes())
	assert.Equal(t, true, m["match"])
	assert.EqualValues(t, 0, m["bit_error_rate"])
	assert.Contains(t, m, "reference_fingerprint")

	out.Reset()
	require.NoError(t, app.Compare(context.Background(), "a.wav", "c.wav"))
	m = decodeMsgpack(t, out.Bytes())
	assert.Greater(t, m["bit_error_rate"].(float64), 0.0)

	out.Reset()
	assert.Error(t, app.Compare(context.Background(), "a.wav", "missing.wav"))
}

func TestEncodeDecode(t *testing.T) {
	app, out := newTestApp(t, "msgpack")

	require.NoError(t, app.Encode([]string{"5", "0x10", "4294967295"}))
	m := decodeMsgpack(t, out.Bytes())
	assert.Equal(t, "fp2", m["algorithm"])
	assert.EqualValues(t, 3, m["subfingerprints"])
	encoded := m["fingerprint"].(string)

	raw, alg, err := fingerprint.DecodeFingerprint([]byte(encoded), true)
	require.NoError(t, err)
	assert.Equal(t, 1, alg)
	assert.Equal(t, []uint32{5, 16, math.MaxUint32}, raw)

	out.Reset()
	require.NoError(t, app.Decode(" "+encoded+"\n"))
	m = decodeMsgpack(t, out.Bytes())
	assert.EqualValues(t, 1, m["algorithm_id"])
	assert.Len(t, m["raw"], 3)

	assert.Error(t, app.Encode([]string{"nope"}))
	assert.Error(t, app.Encode([]string{"4294967296"}))
	assert.Error(t, app.Decode("A"))
}

func TestCompareEncoded(t *testing.T) {
	app, out := newTestApp(t, "msgpack")

	raw := []uint32{0xdeadbeef, 0x12345678, 0x0f0f0f0f, 0xcafebabe}
	a, err := fingerprint.EncodeFingerprint(raw, 1, true)
	require.NoError(t, err)
	other, err := fingerprint.EncodeFingerprint(raw, 0, true)
	require.NoError(t, err)

	require.NoError(t, app.CompareEncoded(string(a), string(a)))
	m := decodeMsgpack(t, out.Bytes())
	assert.Equal(t, true, m["match"])
	assert.EqualValues(t, 0, m["hash_distance"])

	assert.Error(t, app.CompareEncoded(string(a), string(other)))
	assert.Error(t, app.CompareEncoded("A", string(a)))
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	jobFile := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(jobFile, []byte(`
name: nightly
reference: a.wav
inputs:
  - b.wav
  - c.wav
timeout: 1m
`), 0644))

	var out bytes.Buffer
	outputFile := filepath.Join(dir, "out", "summary.msgpack")
	app, err := NewAppWithConfig(&Context{
		JobFile:      jobFile,
		OutputFile:   outputFile,
		OutputFormat: "msgpack",
		Stdout:       &out,
		Loader:       testLoader(),
	}, configs.GetDefaultConfig())
	require.NoError(t, err)

	require.NoError(t, app.RunBatch(context.Background()))
	assert.Zero(t, out.Len())

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	m := decodeMsgpack(t, data)
	assert.Equal(t, "nightly", m["job"])
	assert.EqualValues(t, 3, m["successful"])
	assert.Len(t, m["comparisons"], 2)
}

func TestRunBatchRequiresJob(t *testing.T) {
	app, _ := newTestApp(t, "msgpack")
	assert.Error(t, app.RunBatch(context.Background()))
}

func TestLoadJobFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonFile := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"name":"j","inputs":["x.wav","y.wav"],"pairwise":true}`), 0644))
	job, err := loadJobFromFile(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, "j", job.Name)
	assert.True(t, job.Pairwise)

	noExt := filepath.Join(dir, "job")
	require.NoError(t, os.WriteFile(noExt, []byte("name: k\ninputs: [z.wav]\ntimeout: 30s\n"), 0644))
	job, err = loadJobFromFile(noExt)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, job.Timeout)

	_, err = loadJobFromFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestGenerateAndValidateExamples(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	configFile := filepath.Join(dir, "nested", "chromaprint.yaml")
	require.NoError(t, GenerateExampleConfig(configFile, &out))
	require.NoError(t, ValidateConfigFile(configFile, &out))
	assert.Contains(t, out.String(), "Application configuration is valid")

	jobFile := filepath.Join(dir, "job.yaml")
	require.NoError(t, GenerateExampleJob(jobFile, &out))
	require.NoError(t, ValidateJobFile(jobFile, &out))
	assert.Contains(t, out.String(), "Reference: ./masters/track01.wav")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compare:\n  match_threshold: 3\n"), 0644))
	assert.Error(t, ValidateConfigFile(bad, &out))
}

func TestNewFormatter(t *testing.T) {
	for _, format := range configs.OutputFormats {
		f, err := newFormatter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}
	_, err := newFormatter("xml")
	assert.Error(t, err)
}

func TestPresenterRounding(t *testing.T) {
	p := &presenter{format: "table", config: configs.OutputConfig{Precision: 2}}
	assert.Equal(t, 0.12, p.round(0.1234))
	assert.Equal(t, 0.0, p.round(math.NaN()))
	assert.Equal(t, "FP4", p.algorithmName("fp4"))

	p.format = "json"
	assert.Equal(t, "fp4", p.algorithmName("fp4"))
}
