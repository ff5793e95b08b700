package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/erj-report/internal/domain"
)

const manifestJSON = `{
  "number": "R7-001-020124",
  "sectionA": {"trainNumber": "EX 1234", "date": "2024-01-02"},
  "vehicleManifest": [
    {"class": "locomotive", "lengthMeters": 17.5, "emptyMassTons": 80, "brakeMassTons": 60},
    {"class": "wagon", "lengthMeters": 14.24, "payloadTons": 18, "emptyMassTons": 12, "brakeMassTons": 18}
  ]
}`

// setupEnv points the CLI at a fresh SQLite file.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "erj.db"))
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("AUTHZ_ENABLED", "true")
	t.Setenv("PHONEBOOK_URL", "")
	return dir
}

// run executes erjctl with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "erjctl %v", args)
	return out
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "migrate")
	assert.Contains(t, out, "applied 1")
	assert.Contains(t, out, "applied 2")

	out = mustRun(t, "migrate")
	assert.Equal(t, "database is up to date\n", out)
}

func TestReportImportAnalyzeExport(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "migrate")

	file := filepath.Join(dir, "r7.json")
	require.NoError(t, os.WriteFile(file, []byte(manifestJSON), 0o600))

	assert.Equal(t, "imported R7-001-020124\n", mustRun(t, "report", "import", file))

	out := mustRun(t, "report", "analyze", "R7-001-020124")
	assert.Contains(t, out, "length      31.74 m")
	assert.Contains(t, out, "braking %   70.91")

	out = mustRun(t, "report", "export", "R7-001-020124", "--format", "xlsx", "--out", dir)
	assert.Contains(t, out, "r7-R7-001-020124.xlsx")

	f, err := excelize.OpenFile(filepath.Join(dir, "r7-R7-001-020124.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	out = mustRun(t, "report", "show", "R7-001-020124")
	assert.Contains(t, out, `"pctTotal": 70.91`)
}

func TestReportExport_stdout(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "migrate")
	file := filepath.Join(dir, "r7.json")
	require.NoError(t, os.WriteFile(file, []byte(manifestJSON), 0o600))
	mustRun(t, "report", "import", file)

	out := mustRun(t, "report", "export", "R7-001-020124", "-o", "-")

	assert.Contains(t, out, `"number": "R7-001-020124"`)
}

func TestReportShow_notFound(t *testing.T) {
	setupEnv(t)
	mustRun(t, "migrate")

	_, err := run(t, "report", "show", "404-01-01-24")

	assert.ErrorContains(t, err, "not found")
}

func TestUserAddList(t *testing.T) {
	setupEnv(t)
	mustRun(t, "migrate")

	out := mustRun(t, "user", "add", "--id", "12345", "--name", "Anna Nowak", "--email", "anna@example.com", "--role", "admin")
	assert.Equal(t, "created user 12345 (admin)\n", out)

	_, err := run(t, "user", "add", "--id", "12345", "--name", "Again")
	assert.ErrorContains(t, err, "already exists")

	out = mustRun(t, "user", "list")
	assert.Equal(t, "12345\tAnna Nowak\tanna@example.com\tadmin\tactive\n", out)
}

func TestPhonebookImportAndRefresh(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "migrate")

	file := filepath.Join(dir, "phonebook.csv")
	require.NoError(t, os.WriteFile(file, []byte("name,role,number,hours\nDyżurny Kutno,dispatcher,+48 24 000 00 00,24h\n"), 0o600))

	assert.Equal(t, "imported 1 entries\n", mustRun(t, "phonebook", "import", file))

	// No PHONEBOOK_URL: the stored copy is served.
	assert.Equal(t, "1 entries (local)\n", mustRun(t, "phonebook", "refresh"))
}

func TestDiscountImportListReset(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "migrate")

	file := filepath.Join(dir, "ulgi.csv")
	csv := "51;Student;percent;51;Do 26 roku życia\n" +
		"100;Straż Graniczna;exemption;100;Przejazd służbowy\n"
	require.NoError(t, os.WriteFile(file, []byte(csv), 0o600))

	assert.Equal(t, "imported 2 discounts\n", mustRun(t, "discount", "import", file))

	out := mustRun(t, "discount", "list", "--type", "exemption")
	assert.Equal(t, "100\tStraż Graniczna\tZwolnienie 100%\n", out)

	out = mustRun(t, "discount", "list", "student")
	assert.Equal(t, "51\tStudent\t51%\n", out)

	out = mustRun(t, "discount", "reset")
	assert.Contains(t, out, "restored ")
	assert.NotContains(t, mustRun(t, "discount", "list"), "Student\t")
}

func TestDiscountImport_emptyFile(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "migrate")

	file := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(file, []byte("\n"), 0o600))

	_, err := run(t, "discount", "import", file)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfigError(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "migrate")

	assert.ErrorContains(t, err, "DATABASE_URL")
}
