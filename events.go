package omega

import (
	"reflect"
	"time"

	"go.uber.org/zap"
)

// Events carries the optional observability callbacks raised by the engine.
// Nil callbacks are skipped; every event is also logged at debug level.
type Events struct {
	// BeginListing fires when an enumeration begins, with the expected count.
	BeginListing func(entityType reflect.Type, expected int64)
	// EntityLoaded fires when an entity instance is materialized or served
	// from the identity cache.
	EntityLoaded func(entityType reflect.Type, identifier any)
	// EndListing fires when an enumeration completes, with the actual count.
	EndListing func(entityType reflect.Type, actual int64)
	// OperationComplete fires at the end of every public operation.
	OperationComplete func(operation string, success bool, elapsed time.Duration)
}

func (em *EntityManager) emitBeginListing(t reflect.Type, expected int64) {
	em.logger.Debug("begin listing",
		zap.String("entity", t.Name()),
		zap.Int64("expected", expected))
	if em.events.BeginListing != nil {
		em.events.BeginListing(t, expected)
	}
}

func (em *EntityManager) emitEntityLoaded(t reflect.Type, identifier any) {
	em.logger.Debug("entity loaded",
		zap.String("entity", t.Name()),
		zap.Any("identifier", identifier))
	if em.events.EntityLoaded != nil {
		em.events.EntityLoaded(t, identifier)
	}
}

func (em *EntityManager) emitEndListing(t reflect.Type, actual int64) {
	em.logger.Debug("end listing",
		zap.String("entity", t.Name()),
		zap.Int64("actual", actual))
	if em.events.EndListing != nil {
		em.events.EndListing(t, actual)
	}
}

func (em *EntityManager) emitOperationComplete(operation string, start time.Time, success bool) {
	elapsed := time.Since(start)
	em.logger.Debug("operation complete",
		zap.String("operation", operation),
		zap.Bool("success", success),
		zap.Duration("elapsed", elapsed))
	if em.events.OperationComplete != nil {
		em.events.OperationComplete(operation, success, elapsed)
	}
}
