package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRagQueryRequestValidate(t *testing.T) {
	valid := &RagQueryRequest{Question: "营收为什么增长？"}
	assert.Nil(t, valid.Validate())

	empty := &RagQueryRequest{}
	modelErr := empty.Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, ErrorRagQuestionInvalid, modelErr.Code)

	tooLong := &RagQueryRequest{Question: strings.Repeat("a", SearchQueryMaxLength+1)}
	modelErr = tooLong.Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, ErrorRagQuestionInvalid, modelErr.Code)

	badResults := 21
	modelErr = (&RagQueryRequest{Question: "q", MaxResults: &badResults}).Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, ErrorSearchLimitInvalid, modelErr.Code)

	badTemperature := 2.5
	modelErr = (&RagQueryRequest{Question: "q", Temperature: &badTemperature}).Validate()
	require.NotNil(t, modelErr)
	assert.Equal(t, ErrorParams, modelErr.Code)

	okTemperature := 0.0
	okResults := 1
	assert.Nil(t, (&RagQueryRequest{Question: "q", Temperature: &okTemperature, MaxResults: &okResults}).Validate())
}
