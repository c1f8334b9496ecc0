package snapshots

import (
	"context"

	"permit-history/internal/domain/permits"
)

// Source entrega TODOS los snapshots almacenados, del más antiguo al más reciente.
// Paginación y reintentos son responsabilidad de la implementación.
type Source interface {
	FetchAll(ctx context.Context) ([]permits.RawSnapshot, error)
}

// Store es un Source en el que además se pueden añadir snapshots.
// Append asigna ID (y CapturedAt si viene vacío) y devuelve el snapshot guardado.
type Store interface {
	Source
	Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error)
}
