package permits

import (
	"fmt"
	"strings"
)

// Status es el estado de usuario del permiso. Enum cerrado.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusAuthorized Status = "AUTHORIZED"
	StatusFinalized  Status = "FINALIZED"
)

// Códigos de "Status de usuario" tal como vienen del ledger.
const (
	CodeAuthorized = "AUTO"
	CodeApproved   = "APRO"
	CodeFinalized  = "FIN"
)

// StatusOf traduce un código crudo al enum. Cualquier otro código (o vacío) es PENDING.
func StatusOf(code string) Status {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case CodeAuthorized:
		return StatusAuthorized
	case CodeApproved:
		return StatusApproved
	case CodeFinalized:
		return StatusFinalized
	default:
		return StatusPending
	}
}

// Department es el departamento propietario. Enum cerrado.
type Department string

const (
	DepartmentElectrical Department = "ELECTRICAL"
	DepartmentMechanical Department = "MECHANICAL"
	DepartmentGE         Department = "GE"
	DepartmentIC         Department = "IC"
	DepartmentOther      Department = "OTHER"
)

// DepartmentOrder es el orden fijo de presentación.
var DepartmentOrder = []Department{
	DepartmentElectrical,
	DepartmentMechanical,
	DepartmentGE,
	DepartmentIC,
	DepartmentOther,
}

var departmentLabels = map[Department]string{
	DepartmentElectrical: "Mto. Eléctrico",
	DepartmentMechanical: "Mto. Mecánico",
	DepartmentGE:         "GE",
	DepartmentIC:         "Mto. I&C",
	DepartmentOther:      "Otros",
}

// Label devuelve la etiqueta legible del departamento.
func (d Department) Label() string {
	if l, ok := departmentLabels[d]; ok {
		return l
	}
	return departmentLabels[DepartmentOther]
}

// rank devuelve la posición en DepartmentOrder; desconocidos van al final.
func (d Department) rank() int {
	for i, o := range DepartmentOrder {
		if o == d {
			return i
		}
	}
	return len(DepartmentOrder)
}

// ParseDepartment valida un id de departamento (case-insensitive).
func ParseDepartment(s string) (Department, error) {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	for _, o := range DepartmentOrder {
		if o == d {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown department %q", s)
}

// DepartmentTable mapea el usuario creador ("Creado por") a departamento.
type DepartmentTable map[string]Department

// DefaultDepartmentTable es la tabla fija de usuarios de mantenimiento.
func DefaultDepartmentTable() DepartmentTable {
	return DepartmentTable{
		"UF183530": DepartmentElectrical,
		"UF474650": DepartmentMechanical,
		"UF076560": DepartmentGE,
		"UF775634": DepartmentIC,
	}
}

// Of devuelve el departamento del usuario; OTHER si no está en la tabla.
func (t DepartmentTable) Of(owner string) Department {
	if d, ok := t[strings.TrimSpace(owner)]; ok {
		return d
	}
	return DepartmentOther
}
