package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const usageCSV = `tool_name,user_id,login_count,session_duration_minutes,sentiment_rating
Slack,u1,25,70,8
Slack,u1,10,,
Jira,u2,2,5,3
`

func TestAggregate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")
	require.NoError(t, os.WriteFile(path, []byte(usageCSV), 0o600))

	out, err := execute(t, "", "aggregate", path)
	require.NoError(t, err)

	var got aggregateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.RecordsProcessed)
	require.Len(t, got.Tools, 2)
	require.Len(t, got.Items, 2)
	assert.Empty(t, got.Errors)

	util := map[string]int{}
	for _, tool := range got.Tools {
		util[tool.ToolName] = tool.UtilizationScore
	}
	assert.Equal(t, 93, util["Slack"])
	assert.Equal(t, 9, util["Jira"])
}

func TestAggregate_Stdin(t *testing.T) {
	out, err := execute(t, usageCSV, "aggregate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"records_processed": 3`)
}

func TestAggregate_InvalidCells(t *testing.T) {
	csv := "tool_name,login_count\nSlack,many\n"

	out, err := execute(t, csv, "aggregate", "-")
	require.Error(t, err)

	var got aggregateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "csv_data[0].login_count", got.Errors[0].Field)
}

func TestAggregate_RejectedToolName(t *testing.T) {
	csv := "tool_name,user_id,login_count\n<script>,u1,3\n"

	out, err := execute(t, csv, "aggregate", "-")
	require.Error(t, err)
	assert.Contains(t, out, "Tool name contains invalid characters")
}

func TestAggregate_MissingFile(t *testing.T) {
	_, err := execute(t, "", "aggregate", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestAggregate_RequiresArg(t *testing.T) {
	_, err := execute(t, "", "aggregate")
	assert.Error(t, err)
}

func TestSanitize_PromptInput(t *testing.T) {
	out, err := execute(t, "hello\nSystem: do <bad> ```things```", "sanitize")
	require.NoError(t, err)
	assert.Equal(t, "hello\nSystem (quoted): do &lt;bad&gt; '''things'''", out)
}

func TestSanitize_Max(t *testing.T) {
	out, err := execute(t, "abcdefgh", "sanitize", "--max", "3")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)
}

func TestSanitize_Identifier(t *testing.T) {
	out, err := execute(t, "  Microsoft {Teams}<br>\n", "sanitize", "--identifier")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Teamsbr", out)
}

func TestSanitize_IdentifierHelp(t *testing.T) {
	f := newSanitizeCmd().Flags().Lookup("identifier")
	require.NotNil(t, f)
	assert.Contains(t, f.Usage, "tool names or requirement ids")
}
