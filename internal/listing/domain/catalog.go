package domain

// Categories offered when publishing.
var Categories = []string{
	"Electrónica",
	"Vehículos",
	"Hogar",
	"Deportes",
	"Moda",
	"Libros",
	"Música",
	"Otros",
}

// Conditions describe the state of the item.
var Conditions = []string{
	"Nuevo",
	"Como nuevo",
	"Muy bueno",
	"Bueno",
	"Regular",
}

// ReportReasons are the only accepted reasons when reporting a listing.
var ReportReasons = []string{
	"Contenido ofensivo o inapropiado",
	"Producto falsificado o engañoso",
	"Contenido para adultos",
	"Violación de derechos de autor",
	"Spam o contenido repetitivo",
	"Producto ilegal o prohibido",
	"Información personal expuesta",
	"Otro motivo",
}

func IsCategory(s string) bool     { return contains(Categories, s) }
func IsCondition(s string) bool    { return contains(Conditions, s) }
func IsReportReason(s string) bool { return contains(ReportReasons, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
