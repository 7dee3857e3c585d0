package models

// Sentinels written by the normalizer in place of missing text.
const (
	NotSpecified       = "No Especificado"
	MissingDescription = "SIN DESCRIPCION"
)

// Canonical column names shared by both datasets.
const (
	ColumnDate         = "fecha"
	ColumnAmount       = "importe"
	ColumnCurrency     = "moneda"
	ColumnManagement   = "gerencia"
	ColumnPurchaseType = "tipocompra"
	ColumnSupplier     = "proveedor"
	ColumnDescription  = "descripcion_producto"
	ColumnVoucher      = "comprobante"
	ColumnDisbursement = "desembolso"
)

// Currency values as they appear in the purchase order export.
const (
	CurrencyPesos   = "Pesos"
	CurrencyDollars = "Dólares"
	CurrencyEuro    = "Euro"
)

// Series names produced by the pipeline.
const (
	SeriesPurchaseOrdersARS = "gasto_ordenes_ars"
	SeriesPurchaseOrdersUSD = "gasto_ordenes_usd"
	SeriesTransfers         = "ingreso_transferencias"
)

// Dataset names.
const (
	DatasetPurchaseOrders = "ordenes_compra"
	DatasetTransfers      = "transferencias"
)

// File permissions
const (
	PermissionFile      = 0644
	PermissionDirectory = 0750
)
