package grade

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/coachgrade/internal/config"
	"github.com/flarebyte/coachgrade/internal/roster"
	"github.com/flarebyte/coachgrade/internal/testutil"
)

func coachServer(t *testing.T, present ...string) *testutil.CoachServer {
	t.Helper()
	return testutil.NewCoachServer(t, "/gemini2", present...)
}

func hostNewlines(s string) string {
	if runtime.GOOS == "windows" {
		return strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}

func writeInput(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "class.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func runGrade(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ec interface{ ExitCode() int }
	require.True(t, errors.As(err, &ec), "error %v carries no exit code", err)
	return ec.ExitCode()
}

func TestGrade_ThreeRowScenario(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "\ufeffStudent Num,Student Name\n1001,Ada\n1002,Bo\n,Casey\n")
	out := filepath.Join(dir, "graded.csv")

	stdout, err := runGrade(t, "--base-url", srv.URL+"/gemini2/", "--csv", in, "--out", out, "--delay", "0s")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, hostNewlines("Student Num,Student Name,Score\n1001,Ada,10\n1002,Bo,0\n,Casey,\n"), string(got))
	assert.Equal(t, int64(2), srv.Hits())

	assert.Contains(t, stdout, "Checking 3 students against "+srv.URL+"/gemini2/")
	assert.Contains(t, stdout, "FOUND      1001  Ada")
	assert.Contains(t, stdout, "MISSING     1002  Bo")
	assert.Contains(t, stdout, "SKIP  (no ID): Casey")
	assert.Contains(t, stdout, "RESULTS: 1/3 students accessed the coach")
	assert.Contains(t, stdout, "Accessed: 1  Not accessed: 1  Skipped: 1")
	assert.Contains(t, stdout, "Output written to: "+out)
	assert.Contains(t, stdout, `python paste-to-gradebook.py --f "`+out+`" --paste-mode`)
}

func TestGrade_CustomPoints(t *testing.T) {
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num\n1001\n")
	out := filepath.Join(dir, "graded.csv")

	_, err := runGrade(t, "--base-url", srv.URL+"/gemini2", "--csv", in, "--out", out, "--delay", "0s", "--points", "5")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, hostNewlines("Student Num,Score\n1001,5\n"), string(got))
}

func TestGrade_MissingIDColumnMakesNoRequests(t *testing.T) {
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student ID,Student Name\n1001,Ada\n")
	out := filepath.Join(dir, "graded.csv")

	_, err := runGrade(t, "--base-url", srv.URL, "--csv", in, "--out", out, "--delay", "0s")
	require.Error(t, err)

	assert.Equal(t, exitCodeExecErr, exitCode(t, err))
	assert.Contains(t, err.Error(), `"Student ID", "Student Name"`)
	assert.Equal(t, int64(0), srv.Hits())
	assert.NoFileExists(t, out)
}

func TestGrade_InvalidUTF8RosterMakesNoRequests(t *testing.T) {
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num,Student Name\n1001,Jos\xe9\n")
	out := filepath.Join(dir, "graded.csv")

	_, err := runGrade(t, "--base-url", srv.Base, "--csv", in, "--out", out, "--delay", "0s")
	require.Error(t, err)

	assert.Equal(t, exitCodeExecErr, exitCode(t, err))
	assert.ErrorIs(t, err, roster.ErrEncoding)
	assert.Equal(t, int64(0), srv.Hits())
	assert.NoFileExists(t, out)
}

func TestGrade_MissingInput(t *testing.T) {
	srv := coachServer(t)
	dir := t.TempDir()

	_, err := runGrade(t, "--base-url", srv.URL, "--csv", filepath.Join(dir, "nope.csv"), "--out", filepath.Join(dir, "o.csv"))
	require.Error(t, err)
	assert.Equal(t, exitCodeExecErr, exitCode(t, err))
	assert.Contains(t, err.Error(), "input not found")
	assert.Equal(t, int64(0), srv.Hits())
}

func TestGrade_AllStudentsMissingStillSucceeds(t *testing.T) {
	srv := coachServer(t)
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num\n1\n2\n")
	out := filepath.Join(dir, "graded.csv")

	_, err := runGrade(t, "--base-url", srv.URL, "--csv", in, "--out", out, "--delay", "0s")
	assert.NoError(t, err)
}

func TestGrade_UnreachableServerScoresZero(t *testing.T) {
	base := testutil.UnreachableBase(t)

	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num,Student Name\n1001,Ada\n")
	out := filepath.Join(dir, "graded.csv")

	stdout, err := runGrade(t, "--base-url", base, "--csv", in, "--out", out, "--delay", "0s", "--timeout", "2")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, hostNewlines("Student Num,Student Name,Score\n1001,Ada,0\n"), string(got))
	assert.Contains(t, stdout, "(network error)")
	assert.Contains(t, stdout, "Network errors: 1")
}

func TestGrade_InvalidTimeoutIsUsageError(t *testing.T) {
	_, err := runGrade(t, "--timeout", "0")
	require.Error(t, err)
	assert.Equal(t, exitCodeUsageErr, exitCode(t, err))
}

func TestGrade_RejectsPositionalArgs(t *testing.T) {
	_, err := runGrade(t, "class.csv")
	assert.Error(t, err)
}

func TestGrade_ConfigFileAndFlagPrecedence(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num\n1001\n")
	out := filepath.Join(dir, "graded.csv")
	cfgPath := filepath.Join(dir, "grade.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"baseUrl: "+srv.URL+"/gemini2\ncsv: "+in+"\nout: "+out+"\npoints: 7\ndelayMs: 0\n"), 0o644))

	_, err := runGrade(t, "--config", cfgPath)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, hostNewlines("Student Num,Score\n1001,7\n"), string(got))

	_, err = runGrade(t, "--config", cfgPath, "--points", "3")
	require.NoError(t, err)
	got, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, hostNewlines("Student Num,Score\n1001,3\n"), string(got))
}

func TestGrade_EnvironmentBaseURL(t *testing.T) {
	srv := coachServer(t, "1001")
	t.Setenv(config.EnvBaseURL, srv.URL+"/gemini2")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num\n1001\n")
	out := filepath.Join(dir, "graded.csv")

	_, err := runGrade(t, "--csv", in, "--out", out, "--delay", "0s")
	require.NoError(t, err)
	assert.Equal(t, int64(1), srv.Hits())
}

func TestGrade_WritesReports(t *testing.T) {
	srv := coachServer(t, "1001")
	dir := t.TempDir()
	in := writeInput(t, dir, "Student Num,Student Name\n1001,Ada\n1002,Bo\n")
	out := filepath.Join(dir, "graded.csv")
	summary := filepath.Join(dir, "reports", "summary.yaml")
	metrics := filepath.Join(dir, "reports", "coachgrade.prom")

	_, err := runGrade(t, "--base-url", srv.URL+"/gemini2", "--csv", in, "--out", out, "--delay", "0s",
		"--summary-out", summary, "--metrics-out", metrics)
	require.NoError(t, err)

	s, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(s), "accessed:\n  - Ada\n")
	assert.Contains(t, string(s), "not_accessed:\n  - Bo\n")

	m, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(m), `coachgrade_students{bucket="accessed"} 1`)
}

func TestGrade_RerunIsByteIdentical(t *testing.T) {
	srv := coachServer(t, "1001", "1003")
	dir := t.TempDir()
	in := writeInput(t, dir, "Period,Student Num,Student Name\n3,1001,Ada\n3,1002,Bo\n3,,Casey\n3,1003,\"Di, Jr\"\n")
	out := filepath.Join(dir, "graded.csv")
	args := []string{"--base-url", srv.URL + "/gemini2", "--csv", in, "--out", out, "--delay", "0s"}

	_, err := runGrade(t, args...)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = runGrade(t, args...)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, hostNewlines("Period,Student Num,Student Name,Score\n3,1001,Ada,10\n3,1002,Bo,0\n3,,Casey,\n3,1003,\"Di, Jr\",10\n"), string(first))
}
