package trace_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/trace"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := trace.NewRecorder(42, "replay")
	r.Append(op.PointRandomBool, 1, "true")
	r.Append(op.PointTaskCreate, 2, "2")
	r.Append(op.PointRandomInt, 1, "3")

	var buf bytes.Buffer
	require.NoError(t, trace.Write(&buf, r.Trace()))

	got, err := trace.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, "replay", got.Strategy)
	require.Len(t, got.Points, 3)
	assert.Equal(t, op.PointRandomBool, got.Points[0].Kind)
	assert.Equal(t, op.ID(1), got.Points[0].Operation)
	assert.Equal(t, "true", got.Points[0].Value)
	assert.Equal(t, "3", got.Points[2].Value)
}

func TestReadRejectsMissingFooter(t *testing.T) {
	buf := bytes.NewBufferString("# trace v1 seed=1 strategy=dfs\nTaskCreate:1:1\n")
	_, err := trace.Read(buf)
	require.Error(t, err)
	var perr *trace.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestReadRejectsMissingHeader(t *testing.T) {
	buf := bytes.NewBufferString("TaskCreate:1:1\n# end\n")
	_, err := trace.Read(buf)
	require.Error(t, err)
}
