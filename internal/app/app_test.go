package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurceive/plate_combos/internal/config"
	"github.com/aurceive/plate_combos/internal/output"
)

const twoPlateConfig = "" +
	"bar_kg: 20\n" +
	"range: {min: 40, max: 80}\n" +
	"limits: {default: 2, overrides: {}}\n" +
	"micro: []\n" +
	"heavy_preference: [20kg, 10kg]\n" +
	"plates:\n" +
	"  - {label: 20kg, kg: 20}\n" +
	"  - {label: 10kg, kg: 10}\n"

type runResult struct {
	code   int
	stdout string
	stderr string
}

func runIn(t *testing.T, dir string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := RunWithOptions(context.Background(), Options{Args: args, Dir: dir, Stdout: &stdout, Stderr: &stderr})
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_TwoPlateTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(twoPlateConfig), 0o644))
	out := filepath.Join(dir, "combos.json")

	res := runIn(t, dir, "--out", out, "--log-level", "error")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Saved: "+out+"\n", res.stdout)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ""+
		`{"meta":{"bar_kg":20,"limits":{"default":2,"overrides":{}},"range":{"min":40,"max":80},`+
		`"plates":[{"label":"20kg","kg":20,"fam":"kg","color":null},{"label":"10kg","kg":10,"fam":"kg","color":null}]},`+
		`"totals":[{"kg":40,"combos":[[1]]},{"kg":60,"combos":[[0]]},{"kg":80,"combos":[[0,1]]}]}`+"\n",
		string(b))
}

func TestRun_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "two.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(twoPlateConfig), 0o644))
	out := filepath.Join(dir, "combos.json")
	xlsx := filepath.Join(dir, "out", "combos.xlsx")

	res := runIn(t, t.TempDir(), "--config", cfgPath, "--out", out, "--xlsx", xlsx)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "finished")

	fromJSON, err := output.Read(out)
	require.NoError(t, err)
	fromXLSX, err := output.Read(xlsx)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromXLSX)
}

func TestRun_ConfigErrorsExitTwo(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("plates:\n  - {label: a, kg: 5}\n  - {label: a, kg: 5}\nlimits: {overrides: {}}\nmicro: []\nheavy_preference: []\n"), 0o644))
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("bars: 2\n"), 0o644))
	badMicro := filepath.Join(dir, "micro.yaml")
	require.NoError(t, os.WriteFile(badMicro, []byte(strings.Replace(twoPlateConfig, "micro: []", "micro: [0.5kg]", 1)), 0o644))

	for _, args := range [][]string{
		{"--config", bad},
		{"--config", unknown},
		{"--config", badMicro},
		{"--config", filepath.Join(dir, "missing.yaml")},
		{"--min", "100", "--max", "50"},
		{"--log-level", "loud"},
		{"--no-such-flag"},
	} {
		res := runIn(t, dir, args...)
		assert.Equal(t, 2, res.code, "%v", args)
		assert.NotEmpty(t, res.stderr, "%v", args)
		assert.Empty(t, res.stdout, "%v", args)
	}
}

func TestRun_WriteFailureExitsOne(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "two.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(twoPlateConfig), 0o644))
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	res := runIn(t, dir, "--config", cfgPath, "--out", filepath.Join(blocker, "combos.json"))
	assert.Equal(t, 1, res.code)
}

func TestRun_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stderr bytes.Buffer
	code := RunWithOptions(ctx, Options{
		Args:   []string{"--out", filepath.Join(dir, "combos.json")},
		Dir:    dir,
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})
	assert.Equal(t, 1, code)
	_, err := os.Stat(filepath.Join(dir, "combos.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("bar_kg: 20\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, path, FindConfig(nested))
	assert.Equal(t, path, FindConfig(root))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", &buf)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger("loud", &buf)
	require.Error(t, err)
}

func TestRunLookup(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "two.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(twoPlateConfig), 0o644))
	table := filepath.Join(dir, "combos.json")
	require.Equal(t, 0, runIn(t, dir, "--config", cfgPath, "--out", table, "--log-level", "error").code)

	var stdout, stderr bytes.Buffer
	code := RunLookup(context.Background(), Options{
		Args:   []string{"--in", table, "--kg", "60"},
		Dir:    dir,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "60.00 kg (+0.00 kg)\n  - 20kg\n", stdout.String())

	stdout.Reset()
	code = RunLookup(context.Background(), Options{
		Args:   []string{"--in", table, "--min", "30", "--max", "90", "--sort", "plates"},
		Dir:    dir,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "40.00 kg\n  - 10kg\n60.00 kg\n  - 20kg\n80.00 kg\n  - 20kg + 10kg\n", stdout.String())

	code = RunLookup(context.Background(), Options{Args: nil, Dir: dir, Stdout: &stdout, Stderr: &stderr})
	assert.Equal(t, 2, code)

	code = RunLookup(context.Background(), Options{
		Args:   []string{"--in", filepath.Join(dir, "missing.json"), "--kg", "60"},
		Dir:    dir,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	assert.Equal(t, 1, code)
}

func labelsOf(t *testing.T, doc output.Document, combos [][]int) [][]string {
	t.Helper()
	out := make([][]string, 0, len(combos))
	for _, c := range combos {
		l, err := doc.Labels(c)
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func TestRun_DefaultCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("full default catalog run")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "combos.json")
	res := runIn(t, dir, "--out", out, "--log-level", "error")
	require.Equal(t, 0, res.code, res.stderr)

	doc, err := output.ReadJSON(out)
	require.NoError(t, err)
	require.Len(t, doc.Totals, 3425)
	require.Len(t, doc.Meta.Plates, 13)

	first := make([]float64, 0, 10)
	for _, tot := range doc.Totals[:10] {
		first = append(first, tot.Kg)
	}
	assert.Equal(t, []float64{40, 40.42, 40.64, 40.89, 41.11, 41.35, 41.57, 42.28, 42.5, 42.68}, first)

	byKg := make(map[string]output.Total, len(doc.Totals))
	full := 0
	for i, tot := range doc.Totals {
		if i > 0 {
			require.Greater(t, tot.Kg, doc.Totals[i-1].Kg)
		}
		require.NotEmpty(t, tot.Combos)
		require.LessOrEqual(t, len(tot.Combos), 10)
		if len(tot.Combos) == 10 {
			full++
		}
		for _, c := range tot.Combos {
			require.Equal(t, len(tot.Combos[0]), len(c), "plate count differs within %.2f", tot.Kg)
		}
		byKg[fmt.Sprintf("%.2f", tot.Kg)] = tot
	}
	assert.Equal(t, 27, full)

	golden := map[string][][]string{
		"40.00":  {{"10kg"}},
		"42.28":  {{"10kg", "1.14kg"}},
		"60.00":  {{"20kg"}},
		"60.82":  {{"45lb"}},
		"65.36":  {{"35lb", "15lb"}, {"25lb", "25lb"}},
		"100.00": {{"25kg", "15kg"}, {"20kg", "20kg"}},
		"116.25": {
			{"45lb", "15kg", "10lb", "10lb", "2.5kg", "1.14kg"},
			{"35lb", "15kg", "15lb", "15lb", "2.5kg", "1.14kg"},
			{"15kg", "25lb", "25lb", "15lb", "2.5kg", "1.14kg"},
		},
		"137.75": {
			{"45lb", "45lb", "10kg", "15lb", "1.25kg"},
			{"45lb", "35lb", "25lb", "10kg", "1.25kg"},
		},
		"150.00": {{"25kg", "25kg", "15kg"}, {"25kg", "20kg", "20kg"}},
		"156.71": {
			{"25kg", "45lb", "15kg", "15lb", "1.14kg"},
			{"45lb", "20kg", "20kg", "15lb", "1.14kg"},
			{"25kg", "35lb", "15kg", "25lb", "1.14kg"},
			{"20kg", "20kg", "35lb", "25lb", "1.14kg"},
		},
		"197.86": {
			{"25kg", "25kg", "35lb", "15kg", "15lb", "1.25kg"},
			{"25kg", "25kg", "15kg", "25lb", "25lb", "1.25kg"},
			{"25kg", "20kg", "20kg", "35lb", "15lb", "1.25kg"},
			{"25kg", "20kg", "20kg", "25lb", "25lb", "1.25kg"},
		},
		"209.69": {
			{"45lb", "45lb", "45lb", "20kg", "15lb", "15lb"},
			{"45lb", "45lb", "20kg", "35lb", "25lb", "15lb"},
			{"45lb", "20kg", "35lb", "35lb", "25lb", "25lb"},
		},
		"220.00": {{"25kg", "25kg", "25kg", "25kg"}},
	}
	for kg, want := range golden {
		tot, ok := byKg[kg]
		require.True(t, ok, "missing total %s", kg)
		assert.Equal(t, want, labelsOf(t, doc, tot.Combos), "total %s", kg)
	}
}
