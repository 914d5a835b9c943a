package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidSpecs(t *testing.T) {
	specsDir := writeFiles(t, map[string]string{"contact.cue": contactSpecs})

	output, err := runValidateCmd(t, "text", specsDir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ All specs valid")
}

func TestValidateDanglingReference(t *testing.T) {
	specsDir := writeFiles(t, map[string]string{"order.cue": `
package test

entity: order: fields: {
	id:       {fieldType: "int"}
	customer: {type: "object", entity: "custmer"}
}

entity: customer: fields: {
	name: {fieldType: "string"}
}
`})

	output, err := runValidateCmd(t, "text", specsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "✗ Validation failed with 1 error(s)")
	assert.Contains(t, output, "E102")
	assert.Contains(t, output, `did you mean "customer"?`)
}

func TestValidateEmbeddingCycleJSON(t *testing.T) {
	specsDir := writeFiles(t, map[string]string{"cycle.cue": `
package test

entity: a: fields: b: {type: "object", entity: "b"}
entity: b: fields: a: {type: "object", entity: "a"}
`})

	output, err := runValidateCmd(t, "json", specsDir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.Equal(t, "E103", resp.Data.Errors[0].Code)
}

func TestValidatePayload_Valid(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `{"name": "Ada", "email": "ada@example.com", "tags": [{"label": "vip"}]}`,
	})

	output, err := runValidateCmd(t, "text", dir+"/specs", "--entity", "contact", "--data", dir+"/contact.json")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ contact payload valid")
}

func TestValidatePayload_FieldErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `{"email": "not-an-email", "tags": [{"label": "ok"}, {}]}`,
	})

	output, err := runValidateCmd(t, "json", dir+"/specs", "--entity", "contact", "--data", dir+"/contact.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, map[string]string{
		"name":          "This field is required",
		"email":         "The value is not a valid email address",
		"tags[1].label": "This field is required",
	}, resp.Data.Fields)
}

func TestValidatePayload_FieldErrorsText(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `{"email": "ada@example.com"}`,
	})

	output, err := runValidateCmd(t, "text", dir+"/specs", "--entity", "contact", "--data", dir+"/contact.json")
	require.Error(t, err)
	assert.Contains(t, output, "1 field(s) of contact are invalid")
	assert.Contains(t, output, "  name: This field is required")
}

func TestValidatePayload_UnknownEntity(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `{}`,
	})

	_, err := runValidateCmd(t, "text", dir+"/specs", "--entity", "contcat", "--data", dir+"/contact.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeUnknownEntity)
	assert.Contains(t, err.Error(), `did you mean "contact"?`)
}

func TestValidatePayload_MergeError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `{"name": "Ada", "tags": "vip"}`,
	})

	output, err := runValidateCmd(t, "text", dir+"/specs", "--entity", "contact", "--data", dir+"/contact.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, ErrCodeMerge)
}

func TestValidatePayload_NotAnObject(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"specs/contact.cue": contactSpecs,
		"contact.json":      `[1, 2]`,
	})

	_, err := runValidateCmd(t, "text", dir+"/specs", "--entity", "contact", "--data", dir+"/contact.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeBadData)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_EntityRequiresData(t *testing.T) {
	specsDir := writeFiles(t, map[string]string{"contact.cue": contactSpecs})

	_, err := runValidateCmd(t, "text", specsDir, "--entity", "contact")
	require.Error(t, err)
}
