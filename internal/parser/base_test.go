package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseParser(t *testing.T) {
	t.Run("with provided logger", func(t *testing.T) {
		mockLog := logging.NewMockLogger()
		bp := NewBaseParser(mockLog, models.TransferSchema, common.ReadOptions{Delimiter: ','})

		assert.Equal(t, mockLog, bp.GetLogger())
		assert.Equal(t, models.DatasetTransfers, bp.Schema().Name)
		assert.Equal(t, ',', bp.Options().Delimiter)
	})

	t.Run("with nil logger", func(t *testing.T) {
		bp := NewBaseParser(nil, models.TransferSchema, common.ReadOptions{})
		assert.NotNil(t, bp.GetLogger())
	})
}

func TestBaseParser_SetLogger(t *testing.T) {
	bp := NewBaseParser(nil, models.TransferSchema, common.ReadOptions{})
	mockLog := logging.NewMockLogger()

	bp.SetLogger(mockLog)
	assert.Equal(t, mockLog, bp.GetLogger())

	bp.SetLogger(nil)
	assert.Equal(t, mockLog, bp.GetLogger(), "nil logger is ignored")
}

func TestBaseParser_ReadTable(t *testing.T) {
	mockLog := logging.NewMockLogger()
	bp := NewBaseParser(mockLog, models.TransferSchema, common.ReadOptions{Delimiter: ',', Encoding: common.EncodingUTF8})

	table, err := bp.ReadTable(strings.NewReader("a,b,c\nx,01/02/2024,\"1,5\"\n"), "inline")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.True(t, mockLog.HasEntry("INFO", "Normalized dataset"))
}

func TestBaseParser_ReadTable_SchemaMismatch(t *testing.T) {
	mockLog := logging.NewMockLogger()
	bp := NewBaseParser(mockLog, models.TransferSchema, common.ReadOptions{Delimiter: ','})

	table, err := bp.ReadTable(strings.NewReader("a,b\n1,2\n"), "inline")
	require.Error(t, err)
	assert.Nil(t, table)

	var mismatch *parsererror.SchemaMismatchError
	assert.True(t, errors.As(err, &mismatch))
	assert.True(t, mockLog.HasEntry("ERROR", "Normalization failed"))
}

func TestBaseParser_ReadTable_Unreadable(t *testing.T) {
	bp := NewBaseParser(nil, models.TransferSchema, common.ReadOptions{})

	_, err := bp.ReadTable(strings.NewReader(""), "empty.csv")
	var unreadable *parsererror.FileUnreadableError
	require.True(t, errors.As(err, &unreadable))
	assert.Equal(t, "empty.csv", unreadable.FilePath)
}

func TestBaseParser_ReadTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tr.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\nx,01/02/2024,1\n"), 0600))

	bp := NewBaseParser(nil, models.TransferSchema, common.ReadOptions{Delimiter: ','})
	table, err := bp.ReadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = bp.ReadTableFile(filepath.Join(dir, "missing.csv"))
	var unreadable *parsererror.FileUnreadableError
	assert.True(t, errors.As(err, &unreadable))
}

func TestBaseParser_ImplementsLoggerConfigurable(t *testing.T) {
	var _ LoggerConfigurable = &BaseParser{}
}
