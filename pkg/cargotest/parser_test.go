package cargotest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func strPtr(s string) *string { return &s }

func TestParse_SuccessRun(t *testing.T) {
	report, err := Parse(readFixture(t, "success_run.txt"))
	require.NoError(t, err)

	want := Report{
		{
			Name:  "target/debug/deps/foo-5a7be5d1b9c8e0f6",
			State: StatusPass,
		},
		{
			Name:   "target/debug/integration_test-283604d1063344ba",
			State:  StatusPass,
			Passed: 1,
			Total:  1,
			Tests: []Test{
				{Name: "it_runs_a_command", Status: StatusPass},
			},
		},
		{
			Name:  "foo",
			State: StatusPass,
		},
	}
	assert.Equal(t, want, report)
}

func TestParse_FullRunSkipsDownloadPreamble(t *testing.T) {
	report, err := Parse(readFixture(t, "full_run.txt"))
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, "target/debug/deps/libzfs_sys-a797c24cd4b4a7ea", report[0].Name)
	assert.Equal(t, 3, report[0].Passed)
	assert.Equal(t, 3, report[0].Total)
	assert.Equal(t, []Test{
		{Name: "bindgen_test_layout_zpool_handle", Status: StatusPass},
		{Name: "tests::open_close_handle", Status: StatusPass},
		{Name: "tests::pool_search_import_list_export", Status: StatusPass},
	}, report[0].Tests)

	assert.Equal(t, "libzfs-sys", report[1].Name)
	assert.Empty(t, report[1].Tests)
}

func TestParse_FailRunCorrelatesFailureMessages(t *testing.T) {
	report, err := Parse(readFixture(t, "fail_run.txt"))
	require.NoError(t, err)

	want := Report{
		{
			Name:  "target/debug/deps/docker_command-be014e20fbd07382",
			State: StatusPass,
		},
		{
			Name:   "target/debug/integration_test-d4fc68dd5824cbb9",
			State:  StatusFail,
			Passed: 1,
			Failed: 2,
			Total:  3,
			Tests: []Test{
				{
					Name:   "fail",
					Status: StatusFail,
					Error:  strPtr("thread 'fail' panicked at 'assertion failed: `(left == right)` (left: `1`, right: `2`)', tests/integration_test.rs:16"),
				},
				{
					Name:   "fail2",
					Status: StatusFail,
					Error:  strPtr("thread 'fail2' panicked at 'assertion failed: `(left == right)` (left: `3`, right: `2`)', tests/integration_test.rs:22"),
				},
				{Name: "it_runs_a_command", Status: StatusPass},
			},
		},
	}
	assert.Equal(t, want, report)
	assert.True(t, report.Failed())
}

func TestParse_CompileErrorSwallowsRestOfTranscript(t *testing.T) {
	data := readFixture(t, "compile_fail.txt")
	report, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, report, 1)

	const marker = "error[E0369]: "
	idx := strings.Index(string(data), marker)
	require.GreaterOrEqual(t, idx, 0)
	wantMsg := string(data[idx+len(marker):])

	suite := report[0]
	assert.Equal(t, CompileErrorSuite, suite.Name)
	assert.Equal(t, StatusFail, suite.State)
	assert.Equal(t, 0, suite.Passed)
	assert.Equal(t, 1, suite.Failed)
	assert.Equal(t, 0, suite.Ignored)
	assert.Equal(t, 0, suite.Measured)
	assert.Equal(t, 1, suite.Total)
	assert.True(t, suite.IsCompileError())

	require.Len(t, suite.Tests, 1)
	assert.Equal(t, CompileErrorTest, suite.Tests[0].Name)
	assert.Equal(t, StatusFail, suite.Tests[0].Status)
	require.NotNil(t, suite.Tests[0].Error)
	assert.Equal(t, wantMsg, *suite.Tests[0].Error)
	assert.Contains(t, *suite.Tests[0].Error, "error: Could not compile `libzfs`.")
}

func TestParse_ModernCargoOutput(t *testing.T) {
	report, err := Parse(readFixture(t, "modern_run.txt"))
	require.NoError(t, err)
	require.Len(t, report, 3)

	lib := report[0]
	assert.Equal(t, "unittests src/lib.rs (target/debug/deps/widget-1f6a2c0e9d3b4a57)", lib.Name)
	assert.Equal(t, StatusFail, lib.State)
	assert.Equal(t, 10*time.Millisecond, lib.Duration)
	require.Len(t, lib.Tests, 3)
	assert.Nil(t, lib.Tests[0].Error)
	assert.Equal(t, "thread 'parse::tests::splits_fields' panicked at src/parse.rs:41:9:", lib.Tests[1].Message())
	assert.Nil(t, lib.Tests[2].Error)

	assert.Equal(t, "tests/cli.rs (target/debug/deps/cli-7b0c9e41d2a8f316)", report[1].Name)
	assert.Equal(t, 250*time.Millisecond, report[1].Duration)

	doc := report[2]
	assert.Equal(t, "widget", doc.Name)
	require.Len(t, doc.Tests, 1)
	assert.Equal(t, "src/lib.rs - render::pad (line 12)", doc.Tests[0].Name)
}

func TestParse_MinimalPass(t *testing.T) {
	input := "Running x\n" +
		"running 1 tests\n" +
		"test a ... ok\n" +
		"test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n"

	report, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Report{{
		Name:   "x",
		State:  StatusPass,
		Passed: 1,
		Total:  1,
		Tests:  []Test{{Name: "a", Status: StatusPass}},
	}}, report)
}

func TestParse_FailingTestCarriesFirstLineOfOutput(t *testing.T) {
	input := "Running x\n" +
		"running 1 tests\n" +
		"test fail ... FAILED\n" +
		"\n" +
		"failures:\n" +
		"\n" +
		"---- fail stdout ----\n" +
		"boom at src/lib.rs:3\n" +
		"\n" +
		"failures:\n" +
		"    fail\n" +
		"\n" +
		"test result: FAILED. 0 passed; 1 failed; 0 ignored; 0 measured; 0 filtered out\n"

	report, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Len(t, report[0].Tests, 1)

	test := report[0].Tests[0]
	assert.Equal(t, "fail", test.Name)
	assert.Equal(t, StatusFail, test.Status)
	require.NotNil(t, test.Error)
	assert.Equal(t, "boom at src/lib.rs:3", *test.Error)
}

func TestParse_MultipleSuitesKeepTranscriptOrder(t *testing.T) {
	block := func(name, test string) string {
		return "Running " + name + "\n" +
			"running 1 tests\n" +
			"test " + test + " ... ok\n" +
			"\n" +
			"test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n"
	}
	report, err := Parse([]byte(block("first", "a") + block("second", "b")))
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "first", report[0].Name)
	assert.Equal(t, "second", report[1].Name)
	assert.Equal(t, "b", report[1].Tests[0].Name)
}

func TestParse_NoiseInAnyOrderIsIgnored(t *testing.T) {
	suite := "Running x\nrunning 1 tests\ntest a ... ok\n\ntest result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n"
	noisy := "   Compiling a v1\n  Finished dev\n Downloading b v2\n    Updating index\n  Installing c\n   Compiling d v3\n" + suite

	plain, err := Parse([]byte(suite))
	require.NoError(t, err)
	withNoise, err := Parse([]byte(noisy))
	require.NoError(t, err)
	assert.Equal(t, plain, withNoise)
}

func TestParse_NoiseBetweenSuitesEndsTheReport(t *testing.T) {
	suite := func(name string) string {
		return "Running " + name + "\nrunning 1 tests\ntest a ... ok\n\n" +
			"test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n"
	}
	report, err := Parse([]byte(suite("first") + "   Compiling x v0.1.0\n" + suite("second")))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "first", report[0].Name)
}

func TestParse_FailedTestWithoutBlockHasNoError(t *testing.T) {
	input := "Running x\n" +
		"running 2 tests\n" +
		"test one ... FAILED\n" +
		"test two ... FAILED\n" +
		"\n" +
		"failures:\n" +
		"\n" +
		"---- one stdout ----\n" +
		"first failure\n" +
		"\n" +
		"failures:\n" +
		"    one\n" +
		"    two\n" +
		"\n" +
		"test result: FAILED. 0 passed; 2 failed; 0 ignored; 0 measured; 0 filtered out\n"

	report, err := Parse([]byte(input))
	require.NoError(t, err)
	tests := report[0].Tests
	require.Len(t, tests, 2)
	assert.Equal(t, "first failure", tests[0].Message())
	assert.Equal(t, StatusFail, tests[1].Status)
	assert.Nil(t, tests[1].Error)
}

func TestParse_AcceptsCRLF(t *testing.T) {
	input := "Running x\r\nrunning 1 tests\r\ntest a ... ok\r\n\r\ntest result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\r\n"
	report, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "x", report[0].Name)
	assert.Equal(t, "a", report[0].Tests[0].Name)
}

func TestParse_IncompleteTrailingSuiteIsDropped(t *testing.T) {
	input := "Running x\nrunning 1 tests\ntest a ... ok\n\ntest result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n" +
		"Running y\nrunning 1 tests\ntest b ... ok\n"
	report, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "x", report[0].Name)
}

func TestParse_PlainCompileError(t *testing.T) {
	report, err := Parse([]byte("error: could not compile `foo`\n"))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "could not compile `foo`\n", report[0].Tests[0].Message())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantRule string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: ErrNoContent,
		},
		{
			name:    "only noise",
			input:   "   Compiling foo v0.1.0\n    Finished dev\n",
			wantErr: ErrNoContent,
		},
		{
			name:    "unrelated output",
			input:   "PASS\nok  example.com/pkg 0.01s\n",
			wantErr: ErrNoContent,
		},
		{
			name:     "truncated summary",
			input:    "Running x\nrunning 1 tests\ntest a ... ok\n\ntest result: ok. 1 passed; 0 failed;\n",
			wantErr:  ErrMalformed,
			wantRule: "suite summary",
		},
		{
			name:     "summary labels out of order",
			input:    "Running x\nrunning 0 tests\n\ntest result: ok. 0 failed; 0 passed; 0 ignored; 0 measured; 0 filtered out\n",
			wantErr:  ErrMalformed,
			wantRule: "suite summary",
		},
		{
			name:     "missing count line",
			input:    "Running x\ntest a ... ok\n",
			wantErr:  ErrMalformed,
			wantRule: "test count",
		},
		{
			name:    "invalid utf-8 in test name",
			input:   "Running x\nrunning 1 tests\ntest \xff\xfe ... ok\n\ntest result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n",
			wantErr: ErrInvalidUTF8,
		},
		{
			name:    "invalid utf-8 in compile error",
			input:   "error: bad \xc3\x28 byte\n",
			wantErr: ErrInvalidUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.GreaterOrEqual(t, syn.Line, 1)
			if tt.wantRule != "" {
				assert.Equal(t, tt.wantRule, syn.Rule)
			}
		})
	}
}

func TestReport_Stats(t *testing.T) {
	report, err := Parse(readFixture(t, "fail_run.txt"))
	require.NoError(t, err)

	s := report.Stats()
	assert.Equal(t, 2, s.Suites)
	assert.Equal(t, 1, s.FailedSuites)
	assert.Equal(t, 3, s.Tests)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 2, s.Failed)
	assert.False(t, s.CompileError)

	failures := report[1].Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "fail", failures[0].Name)
}
