package ranking

import (
	"strconv"

	"cotiza-workers/internal/models"
)

const (
	MaxVehicleReasons   = 3
	MaxInsuranceReasons = 4

	ReasonNoPremium = "Sin tarifa disponible"
)

var bodyTypeLabels = map[models.BodyType]string{
	models.BodyTypeSedan:       "Sedán",
	models.BodyTypeHatchback:   "Hatchback",
	models.BodyTypeSUV:         "SUV",
	models.BodyTypePickup:      "Camioneta",
	models.BodyTypeCoupe:       "Coupé",
	models.BodyTypeMinivan:     "Minivan",
	models.BodyTypeWagon:       "Station wagon",
	models.BodyTypeConvertible: "Convertible",
}

var fuelTypeLabels = map[models.FuelType]string{
	models.FuelTypeGasoline: "bencina",
	models.FuelTypeDiesel:   "diésel",
	models.FuelTypeHybrid:   "híbrido",
	models.FuelTypeElectric: "eléctrico",
}

var transmissionLabels = map[models.Transmission]string{
	models.TransmissionManual:    "manual",
	models.TransmissionAutomatic: "automática",
}

var coverageLabels = map[string]string{
	models.CoverageRC1000:  "Responsabilidad civil sobre 1.000 UF",
	models.CoverageDamage:  "Daños propios",
	models.CoverageTheft:   "Robo",
	models.CoverageGlass:   "Cristales",
	models.CoverageNatural: "Desastres naturales",
}

var preferenceLabels = map[string]string{
	models.PreferenceBrandWorkshop:       "Taller de marca",
	models.PreferenceReplacementCar:      "Auto de reemplazo",
	models.PreferenceRoadAssistance:      "Asistencia en ruta",
	models.PreferenceInternational:       "Cobertura internacional",
	models.PreferenceZeroDeductibleGlass: "Cristales sin deducible",
}

// BodyTypeLabel returns the Spanish display name, or the raw value when unknown.
func BodyTypeLabel(b models.BodyType) string {
	if l, ok := bodyTypeLabels[b]; ok {
		return l
	}
	return string(b)
}

// Phrase renders a match signal as a Spanish reason. Unknown criteria render
// as an empty string and are dropped by Reasons.
func Phrase(s Signal) string {
	switch s.Criterion {
	case CriterionBudget:
		return "Cuota estimada dentro de tu presupuesto"
	case CriterionBodyType:
		return "Carrocería " + BodyTypeLabel(models.BodyType(s.Detail))
	case CriterionFuelType:
		if l, ok := fuelTypeLabels[models.FuelType(s.Detail)]; ok {
			return "Motor " + l
		}
		return "Motor " + s.Detail
	case CriterionTransmission:
		if l, ok := transmissionLabels[models.Transmission(s.Detail)]; ok {
			return "Transmisión " + l
		}
		return "Transmisión " + s.Detail
	case CriterionFamily:
		return "Ideal para la familia"
	case CriterionOffroad:
		return "Preparado para todo terreno"
	case CriterionSafety:
		return "Seguridad de " + s.Detail + " estrellas"
	case CriterionPrice:
		return "Prima dentro de tu presupuesto"
	case CriterionDeductible:
		return "Deducible de " + s.Detail + " UF"
	case CriterionCoverage:
		if l, ok := coverageLabels[s.Detail]; ok {
			return "Incluye " + l
		}
	case CriterionPreference:
		if l, ok := preferenceLabels[s.Detail]; ok {
			return l
		}
	}
	return ""
}

// Reasons phrases signals in order and keeps at most limit of them.
func Reasons(signals []Signal, limit int) []string {
	reasons := make([]string, 0, limit)
	for _, s := range signals {
		if len(reasons) == limit {
			break
		}
		if r := Phrase(s); r != "" {
			reasons = append(reasons, r)
		}
	}
	return reasons
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
