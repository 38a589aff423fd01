package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// SessionState estado de una sesión de escaneo.
type SessionState string

const (
	SessionOpen      SessionState = "open"
	SessionSatisfied SessionState = "satisfied"
	SessionCommitted SessionState = "committed"
	SessionCancelled SessionState = "cancelled"
)

// ConfirmedTake cantidad confirmada físicamente para una clave del plan.
type ConfirmedTake struct {
	Key      entity.GroupKey
	Quantity int64
}

// PartialTakePrompt se muestra al operador cuando el plan toma menos de lo que hay en el hueco.
type PartialTakePrompt struct {
	Key       entity.GroupKey
	Requested int64
	Available int64
}

// ScanOutcome resultado de una lectura aceptada por la sesión.
type ScanOutcome string

const (
	ScanAccepted          ScanOutcome = "accepted"
	ScanNeedsConfirmation ScanOutcome = "needs_confirmation"
)

// ScanResult respuesta a Scan/ConfirmPartial.
type ScanResult struct {
	Outcome   ScanOutcome
	Take      *ConfirmedTake
	Prompt    *PartialTakePrompt
	State     SessionState
	Confirmed int64
	Remaining int64
}

// ScanSession concilia lecturas físicas contra un AllocationPlan inmutable.
// Nada se escribe en el ledger hasta Commit.
type ScanSession struct {
	ID          string
	ProductID   string
	ProductType entity.ProductType
	Requested   int64
	Plan        AllocationPlan
	Takes       []ConfirmedTake
	Pending     *PartialTakePrompt
	State       SessionState
	CreatedAt   time.Time
	CreatedBy   string
}

// NewScanSession abre una sesión sobre un plan completo.
func NewScanSession(id string, plan AllocationPlan, meta RecordMeta) (*ScanSession, error) {
	if id == "" || meta.ProductID == "" || plan.Requested <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := plan.Err(); err != nil {
		return nil, err
	}
	return &ScanSession{
		ID:          id,
		ProductID:   meta.ProductID,
		ProductType: meta.ProductType,
		Requested:   plan.Requested,
		Plan:        plan,
		State:       SessionOpen,
		CreatedAt:   meta.CreatedAt,
		CreatedBy:   meta.CreatedBy,
	}, nil
}

// Confirmed suma de lo confirmado.
func (s *ScanSession) Confirmed() int64 {
	var total int64
	for _, t := range s.Takes {
		total += t.Quantity
	}
	return total
}

// Remaining cantidad que falta confirmar.
func (s *ScanSession) Remaining() int64 { return s.Requested - s.Confirmed() }

// Scan procesa una lectura decodificada. Los rechazos (*domain.ScanError) no alteran la sesión.
// Una clave puede leerse de nuevo mientras lo confirmado no alcance lo planificado para ella.
func (s *ScanSession) Scan(p entity.ScanPayload) (ScanResult, error) {
	if s.State != SessionOpen {
		return ScanResult{}, domain.ErrSessionClosed
	}
	if s.Pending != nil {
		return ScanResult{}, domain.ErrConfirmationPending
	}
	alloc, ok := s.lookup(p.LotID, p.SubLocationID)
	if !ok {
		return ScanResult{}, &domain.ScanError{Err: domain.ErrNotInPlan, LotID: p.LotID, SubLocationID: p.SubLocationID}
	}
	key := alloc.Group.Key
	done := s.confirmedFor(key)
	if done >= alloc.QuantityTaken {
		return ScanResult{}, &domain.ScanError{
			Err: domain.ErrDuplicateScan, LotID: key.LotID, LocationID: key.LocationID, SubLocationID: key.SubLocationID,
		}
	}
	planned := alloc.QuantityTaken - done
	if rem := s.Remaining(); planned > rem {
		planned = rem
	}
	if p.Quantity > 0 && p.Quantity < planned {
		return ScanResult{}, &domain.ScanError{
			Err: domain.ErrLabelQuantity, LotID: key.LotID, LocationID: key.LocationID, SubLocationID: key.SubLocationID,
		}
	}
	if available := alloc.Group.Available - done; planned < available {
		s.Pending = &PartialTakePrompt{Key: key, Requested: planned, Available: available}
		return s.result(ScanNeedsConfirmation, nil), nil
	}
	take := s.accept(key, planned)
	return s.result(ScanAccepted, &take), nil
}

// ConfirmPartial acepta la toma pendiente. quantity 0 toma lo planificado;
// si no, debe estar entre 1 y lo planificado. Una cantidad menor deja la clave
// abierta para otra lectura.
func (s *ScanSession) ConfirmPartial(quantity int64) (ScanResult, error) {
	if s.State != SessionOpen {
		return ScanResult{}, domain.ErrSessionClosed
	}
	if s.Pending == nil {
		return ScanResult{}, domain.ErrInvalidInput
	}
	if quantity == 0 {
		quantity = s.Pending.Requested
	}
	if quantity < 1 || quantity > s.Pending.Requested {
		return ScanResult{}, domain.ErrInvalidInput
	}
	key := s.Pending.Key
	s.Pending = nil
	take := s.accept(key, quantity)
	return s.result(ScanAccepted, &take), nil
}

// DeclinePartial descarta la toma pendiente; la clave puede volver a escanearse.
func (s *ScanSession) DeclinePartial() error {
	if s.State != SessionOpen {
		return domain.ErrSessionClosed
	}
	if s.Pending == nil {
		return domain.ErrInvalidInput
	}
	s.Pending = nil
	return nil
}

// Cancel abandona la sesión sin efectos en el ledger.
func (s *ScanSession) Cancel() error {
	switch s.State {
	case SessionCommitted:
		return domain.ErrSessionClosed
	case SessionCancelled:
		return nil
	}
	s.State = SessionCancelled
	s.Pending = nil
	return nil
}

// Commit convierte las tomas confirmadas en registros de salida. current es el
// estado vigente de los grupos del producto: cada toma debe seguir disponible y
// conforme, si no se devuelve domain.ErrConflict sin tocar la sesión. Fechas y
// calidad de cada salida salen del grupo vigente. Solo desde el estado satisfied.
func (s *ScanSession) Commit(meta RecordMeta, current map[entity.GroupKey]entity.StockGroup) ([]entity.MovementRecord, error) {
	switch s.State {
	case SessionSatisfied:
	case SessionOpen:
		return nil, domain.ErrInvalidInput
	default:
		return nil, domain.ErrSessionClosed
	}
	meta.ProductID = s.ProductID
	meta.ProductType = s.ProductType
	meta.Operation = entity.OperationSortie
	meta.IsTransferLeg = false
	records := make([]entity.MovementRecord, 0, len(s.Takes))
	for _, t := range s.Takes {
		if _, ok := s.Plan.Find(t.Key); !ok {
			return nil, &domain.InternalConsistencyError{Detail: "toma confirmada fuera del plan: " + t.Key.String()}
		}
		g, ok := current[t.Key]
		if !ok || g.Available < t.Quantity {
			return nil, fmt.Errorf("%w: %s disponible=%d confirmado=%d", domain.ErrConflict, t.Key, g.Available, t.Quantity)
		}
		if q := g.QualityStatus.Normalize(); q != entity.QualityConforme {
			return nil, fmt.Errorf("%w: %s calidad=%s", domain.ErrConflict, t.Key, q)
		}
		records = append(records, newRecord(meta, entity.DirectionSortie, t.Quantity,
			g.Key.LocationID, g.Key.SubLocationID, g.SubLocationKind, LotFromGroup(g)))
	}
	if SumQuantity(records) != s.Requested {
		return nil, &domain.InternalConsistencyError{Detail: "suma de tomas distinta de la cantidad pedida"}
	}
	s.State = SessionCommitted
	return records, nil
}

func (s *ScanSession) lookup(lotID string, subLocationID int64) (Allocation, bool) {
	for _, a := range s.Plan.Allocations {
		if a.Group.Key.LotID == lotID && a.Group.Key.SubLocationID == subLocationID {
			return a, true
		}
	}
	return Allocation{}, false
}

func (s *ScanSession) confirmedFor(key entity.GroupKey) int64 {
	for _, t := range s.Takes {
		if t.Key == key {
			return t.Quantity
		}
	}
	return 0
}

// accept suma a la toma existente de la clave; Takes guarda una entrada por clave.
func (s *ScanSession) accept(key entity.GroupKey, quantity int64) ConfirmedTake {
	take := ConfirmedTake{Key: key, Quantity: quantity}
	merged := false
	for i := range s.Takes {
		if s.Takes[i].Key == key {
			s.Takes[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.Takes = append(s.Takes, take)
	}
	if s.Confirmed() >= s.Requested {
		s.State = SessionSatisfied
	}
	return take
}

func (s *ScanSession) result(outcome ScanOutcome, take *ConfirmedTake) ScanResult {
	return ScanResult{
		Outcome:   outcome,
		Take:      take,
		Prompt:    s.Pending,
		State:     s.State,
		Confirmed: s.Confirmed(),
		Remaining: s.Remaining(),
	}
}
