package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/metrics"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/purchaseorderparser"
	"arsat/finanzas/internal/transferparser"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const purchaseOrdersCSV = `Fecha;Comprobante;Proveedor;Descripcion Producto;Importe;Moneda;Gerencia;TipoCompra
15/01/2024;OC-1;ACME;Cable;$ 100,00;Pesos;Ingeniería;Directa
20/01/2024;OC-2;ACME;;$ 50,00;Pesos;Ingeniería;Directa
03/02/2024;OC-3;Globex;Router;$ 200,00;Pesos;Operaciones;Licitación
10/02/2024;OC-4;Globex;Antena;$ 10,00;Dólares;Operaciones;Licitación
05/03/2024;OC-5;Initech;Fibra;$ 400,00;Pesos;;Directa
06/03/2024;OC-6;Initech;Patch;;Pesos;Operaciones;Urgente
sin fecha;OC-7;Hooli;Otro;$ 5,00;Euro;Legales;Directa
`

const transfersCSV = `Desembolso,Fecha,Importe
D1,05/01/2024,"1.000,00"
D2,05/02/2024,"2.000,00"
D3,05/03/2024,"4.000,00"
`

func writeLatin1(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0600))
	return path
}

type fixture struct {
	dir     string
	poPath  string
	trPath  string
	loader  *Loader
	metrics *metrics.Metrics
	logger  *logging.MockLogger
}

func newFixture(t *testing.T, po, tr string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:     dir,
		poPath:  filepath.Join(dir, "oc.csv"),
		trPath:  filepath.Join(dir, "tr.csv"),
		metrics: metrics.New(nil),
		logger:  logging.NewMockLogger(),
	}
	if po != "" {
		writeLatin1(t, dir, "oc.csv", po)
	}
	if tr != "" {
		writeLatin1(t, dir, "tr.csv", tr)
	}
	f.loader = NewLoader(
		purchaseorderparser.New(f.logger, purchaseorderparser.DefaultOptions),
		transferparser.New(f.logger, transferparser.DefaultOptions),
		f.poPath, f.trPath, f.metrics, f.logger,
	)
	return f
}

func loadTable(t *testing.T, content string) *models.Table {
	t.Helper()
	path := writeLatin1(t, t.TempDir(), "oc.csv", content)
	ds, err := purchaseorderparser.New(nil, purchaseorderparser.DefaultOptions).ParseFile(path)
	require.NoError(t, err)
	return ds.Table
}

func loadTransfers(t *testing.T, content string) *models.Table {
	t.Helper()
	path := writeLatin1(t, t.TempDir(), "tr.csv", content)
	ds, err := transferparser.New(nil, transferparser.DefaultOptions).ParseFile(path)
	require.NoError(t, err)
	return ds.Table
}
