package ir_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/vmihailenco/msgpack/v5"

	"optimix/internal/ast"
	"optimix/internal/ir"
)

func loopFunc(t *testing.T) *ir.Func {
	return mustBuild(t, ast.NewFunc("main",
		ast.Decl("x", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("x"), ast.Int(3)),
			ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
		),
		ast.Return(ast.Var("x")),
	))
}

func TestArtifact_File(t *testing.T) {
	f := loopFunc(t)
	path := filepath.Join(t.TempDir(), "main.oir")
	require.NoError(t, ir.SaveArtifact(path, f, false))

	art, err := ir.LoadArtifact(path)
	require.NoError(t, err)
	assert.False(t, art.SSA)
	assert.Equal(t, f.String(), art.Func.String())

	id, ok := art.Func.Lookup("loop_exit_L2")
	require.True(t, ok)
	assert.Equal(t, ir.BlockID(3), id)
}

func TestArtifact_SchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, msgpack.NewEncoder(zw).Encode(&ir.Artifact{Schema: ir.ArtifactSchema + 1, Func: loopFunc(t)}))
	require.NoError(t, zw.Close())

	_, err = ir.ReadArtifact(&buf)
	assert.True(t, errors.Is(err, ir.ErrSchemaMismatch))
}

func TestArtifact_RejectsInvalid(t *testing.T) {
	f := ir.NewFunc("main")
	_, err := f.NewBlock("entry")
	require.NoError(t, err)
	f.Blocks[0].Append(ir.Jmp("missing"))

	var buf bytes.Buffer
	require.NoError(t, ir.WriteArtifact(&buf, f, false))
	_, err = ir.ReadArtifact(&buf)
	assert.Error(t, err)
}

func TestArtifact_NotXZ(t *testing.T) {
	_, err := ir.ReadArtifact(bytes.NewReader([]byte("plain text")))
	assert.Error(t, err)
}

func TestArtifact_SizeCap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ir.WriteArtifact(&buf, loopFunc(t), true))
	data := buf.Bytes()

	_, err := ir.ReadArtifactLimit(bytes.NewReader(data), 16)
	require.ErrorIs(t, err, ir.ErrArtifactTooLarge)

	art, err := ir.ReadArtifactLimit(bytes.NewReader(data), 1<<20)
	require.NoError(t, err)
	assert.True(t, art.SSA)
}
