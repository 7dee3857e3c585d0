package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"arsat/finanzas/cmd/report"
	"arsat/finanzas/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const purchaseOrders = `Fecha;Comprobante;Proveedor;Descripcion Producto;Importe;Moneda;Gerencia;TipoCompra
15/01/2024;OC-1;ACME;Cable;$ 100,00;Pesos;Ingenieria;Directa
03/02/2024;OC-2;Globex;Router;$ 200,00;Pesos;Operaciones;Licitacion
05/03/2024;OC-3;Initech;Fibra;$ 400,00;Pesos;Operaciones;Directa
`

const transfers = `Desembolso,Fecha,Importe
D1,05/01/2024,"1.000,00"
D2,05/02/2024,"2.000,00"
D3,05/03/2024,"4.000,00"
`

func setup(t *testing.T) (dir, configFile string) {
	t.Helper()
	root.Init()
	root.Cmd.AddCommand(report.Cmd)
	t.Cleanup(func() { root.Cmd.RemoveCommand(report.Cmd) })

	dir = t.TempDir()
	configFile = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log:\n  level: error\n"), 0600))
	return dir, configFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs(args)
	t.Cleanup(func() { root.Cmd.SetOut(nil); root.Cmd.SetArgs(nil) })
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestReportCommand_Metadata(t *testing.T) {
	assert.Equal(t, "report", report.Cmd.Use)
	assert.NotNil(t, report.Cmd.RunE)
}

func TestReportCommand_WritesOutputs(t *testing.T) {
	dir, configFile := setup(t)
	poPath := filepath.Join(dir, "oc.csv")
	trPath := filepath.Join(dir, "tr.csv")
	require.NoError(t, os.WriteFile(poPath, []byte(purchaseOrders), 0600))
	require.NoError(t, os.WriteFile(trPath, []byte(transfers), 0600))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "report",
		"--config", configFile,
		"--purchase-orders", poPath,
		"--transfers", trPath,
		"--output-dir", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "wrote ")
	assert.Contains(t, out, "correlation r=")
	assert.FileExists(t, filepath.Join(outDir, "ARSAT_Finanzas_ordenes_compra_FORMATEADO_FINAL.xlsx"))
	assert.FileExists(t, filepath.Join(outDir, "ARSAT_Finanzas_transferencias_FORMATEADO.xlsx"))
	assert.FileExists(t, filepath.Join(outDir, "monthly_series.csv"))
}

func TestReportCommand_NoDatasets(t *testing.T) {
	dir, configFile := setup(t)

	out, err := execute(t, "report",
		"--config", configFile,
		"--purchase-orders", filepath.Join(dir, "missing-oc.csv"),
		"--transfers", filepath.Join(dir, "missing-tr.csv"),
		"--output-dir", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dataset could be loaded")
	assert.Contains(t, out, "purchase orders unavailable")
	assert.Contains(t, out, "transfers unavailable")
}
