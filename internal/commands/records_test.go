package commands_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/auditlog"
)

var addedID = regexp.MustCompile(`Added expense (\S+)`)

func TestAdd_ListDelete(t *testing.T) {
	dir, cfg := initWorkspace(t)

	out, err := runTally(t, "add", "--config", cfg,
		"--name", "Office chairs", "--amount", "310", "--category", "Supplies",
		"--date", "05-03-2024", "--time", "11:15:00", "--payment-method", "card")
	require.NoError(t, err, out)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = runTally(t, "list", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "2024-03-05 11:15:00")
	assert.Contains(t, out, "310.00")

	out, err = runTally(t, "delete", id, "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted "+id)

	out, err = runTally(t, "list", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No expense records.")

	entries, err := auditlog.Read(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, auditlog.ActionAdd, entries[0].Action)
	assert.Equal(t, auditlog.ActionDelete, entries[1].Action)
	assert.Equal(t, id, entries[1].Details)
}

func TestAdd_Invalid(t *testing.T) {
	_, cfg := initWorkspace(t)

	out, err := runTally(t, "add", "--config", cfg, "--name", "Lunch", "--amount", "-5", "--category", "Food")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid amount (must be a positive number)")
	assert.Contains(t, out, "Invalid category 'Food'")
}

func TestDelete_NotFound(t *testing.T) {
	_, cfg := initWorkspace(t)

	out, err := runTally(t, "delete", "nope", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, out, "no expense record nope")
}

func TestSummary(t *testing.T) {
	dir, cfg := initWorkspace(t)
	path := writeCSV(t, dir, "q1.csv", `name,amount,category,date,status
Power,100,Utilities,2024-01-10,completed
Water,50,Utilities,2024-02-10,completed
Flights,350,Travel,2024-02-20,completed
Hotel,500,Travel,2024-02-21,pending
`)
	out, err := runTally(t, "import", path, "--config", cfg)
	require.NoError(t, err, out)

	out, err = runTally(t, "summary", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total expense: 500.00 (3 records)")
	assert.Regexp(t, `Travel\s+350\.00\s+1\s+70\.00%`, out)
	assert.Regexp(t, `Utilities\s+150\.00\s+2\s+30\.00%`, out)
	assert.Regexp(t, `2024-02\s+400\.00\s+2`, out)
	assert.Contains(t, out, "No anomalies.", "four records are too few to judge")
}

func TestSummary_Anomalies(t *testing.T) {
	dir, cfg := initWorkspace(t)
	path := writeCSV(t, dir, "march.csv", `name,amount,category,date
Order 1,100,Sales,2024-03-01
Order 2,100,Sales,2024-03-02
Order 3,100,Sales,2024-03-03
Order 4,100,Sales,2024-03-04
Order 5,100,Sales,2024-03-05
Order 6,100,Sales,2024-03-06
Order 7,100,Sales,2024-03-07
Order 8,100,Sales,2024-03-08
Consulting,5000,Services,2024-03-09
`)
	out, err := runTally(t, "import", path, "--config", cfg, "--kind", "income")
	require.NoError(t, err, out)

	out, err = runTally(t, "summary", "--config", cfg, "--kind", "income")
	require.NoError(t, err, out)
	assert.Regexp(t, `2024-03-09\s+5000\.00\s+1\s+Large Services transaction`, out)
}

func TestExport(t *testing.T) {
	dir, cfg := initWorkspace(t)
	path := writeCSV(t, dir, "jan.csv", goodCSV)
	out, err := runTally(t, "import", path, "--config", cfg)
	require.NoError(t, err, out)

	exportPath := filepath.Join(dir, "export.csv")
	out, err = runTally(t, "export", "--config", cfg, "-o", exportPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported 2 expense records")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,amount,category,timestamp,type,description,payment_method,payment_id,status", lines[0])
	assert.Contains(t, string(data), "Train tickets,80.00,Travel,2024-02-15 00:00:00,expense,,card,,completed")
}

func TestUserFlagOverridesConfig(t *testing.T) {
	dir, cfg := initWorkspace(t)
	path := writeCSV(t, dir, "jan.csv", goodCSV)

	out, err := runTally(t, "import", path, "--config", cfg, "--user", "bob")
	require.NoError(t, err, out)

	out, err = runTally(t, "list", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No expense records.", "alice sees none of bob's records")

	out, err = runTally(t, "list", "--config", cfg, "--user", "bob")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Train tickets")
}
