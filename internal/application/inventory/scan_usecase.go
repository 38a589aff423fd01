package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// PayloadDecoder frontera de decodificación de códigos QR leídos por el operador.
type PayloadDecoder interface {
	Decode(raw string) (entity.ScanPayload, error)
}

const defaultSessionTTL = 30 * time.Minute

// ScanUseCase sesiones de salida guiada por escaneo. La sesión vive fuera del ledger
// hasta Commit; cancelar o dejar expirar no deja rastro.
type ScanUseCase struct {
	ledger   *LedgerUseCase
	sessions repository.ScanSessionRepository
	decoder  PayloadDecoder
	ttl      time.Duration
}

// NewScanUseCase construye el caso de uso de escaneo.
func NewScanUseCase(ledger *LedgerUseCase, sessions repository.ScanSessionRepository, decoder PayloadDecoder) *ScanUseCase {
	ttl := ledger.cfg.ScanSessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &ScanUseCase{ledger: ledger, sessions: sessions, decoder: decoder, ttl: ttl}
}

// StartScanInput abre una sesión para retirar Quantity unidades conformes.
type StartScanInput struct {
	ProductID  string
	Quantity   int64
	LocationID int64 // 0 = todas las zonas
	OperatorID string
}

// Start calcula el plan FIFO y guarda la sesión. Un plan incompleto no abre sesión.
func (uc *ScanUseCase) Start(ctx context.Context, in StartScanInput) (*inventory.ScanSession, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	records, _, err := uc.ledger.movements.ListByProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	plan := allocate(records, in.ProductID, in.Quantity, in.LocationID, entity.QualityConforme)
	meta := uc.ledger.newMeta(entity.OperationSortie, in.ProductID, productTypeOf(records), in.OperatorID)
	session, err := inventory.NewScanSession(uuid.New().String(), plan, meta)
	if err != nil {
		uc.ledger.metrics.IncRejected("scan_start", rejectReason(err))
		return nil, err
	}
	if err := uc.sessions.Save(ctx, session, uc.ttl); err != nil {
		return nil, err
	}
	uc.ledger.log.Info().
		Str("session_id", session.ID).
		Str("product_id", session.ProductID).
		Int64("requested", session.Requested).
		Int("planned_groups", len(plan.Allocations)).
		Msg("sesión de escaneo abierta")
	return session, nil
}

// Get devuelve la sesión o domain.ErrNotFound si no existe o expiró.
func (uc *ScanUseCase) Get(ctx context.Context, id string) (*inventory.ScanSession, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Scan decodifica la lectura y la concilia contra el plan. Los rechazos no modifican la sesión.
func (uc *ScanUseCase) Scan(ctx context.Context, id, raw string) (*inventory.ScanSession, inventory.ScanResult, error) {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, inventory.ScanResult{}, err
	}
	payload, err := uc.decoder.Decode(raw)
	if err != nil {
		uc.ledger.metrics.IncRejected("scan", "decode")
		return s, inventory.ScanResult{}, err
	}
	res, err := s.Scan(payload)
	if err != nil {
		uc.ledger.metrics.IncRejected("scan", rejectReason(err))
		uc.ledger.log.Debug().Err(err).Str("session_id", id).Str("lot_id", payload.LotID).Msg("lectura rechazada")
		return s, inventory.ScanResult{}, err
	}
	if err := uc.sessions.Save(ctx, s, uc.ttl); err != nil {
		return nil, inventory.ScanResult{}, err
	}
	return s, res, nil
}

// ConfirmPartial acepta la toma parcial pendiente (quantity 0 = lo planificado).
func (uc *ScanUseCase) ConfirmPartial(ctx context.Context, id string, quantity int64) (*inventory.ScanSession, inventory.ScanResult, error) {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, inventory.ScanResult{}, err
	}
	res, err := s.ConfirmPartial(quantity)
	if err != nil {
		return s, inventory.ScanResult{}, err
	}
	if err := uc.sessions.Save(ctx, s, uc.ttl); err != nil {
		return nil, inventory.ScanResult{}, err
	}
	return s, res, nil
}

// DeclinePartial descarta la toma parcial pendiente.
func (uc *ScanUseCase) DeclinePartial(ctx context.Context, id string) (*inventory.ScanSession, error) {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DeclinePartial(); err != nil {
		return s, err
	}
	if err := uc.sessions.Save(ctx, s, uc.ttl); err != nil {
		return nil, err
	}
	return s, nil
}

// Cancel abandona la sesión sin escribir en el ledger.
func (uc *ScanUseCase) Cancel(ctx context.Context, id string) error {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Cancel(); err != nil {
		return err
	}
	if err := uc.sessions.Delete(ctx, id); err != nil {
		return err
	}
	uc.ledger.log.Info().Str("session_id", id).Msg("sesión de escaneo cancelada")
	return nil
}

// Commit registra las salidas confirmadas. Dentro de la transacción cada toma se
// verifica contra el disponible y la calidad actuales; si otro escritor consumió ese
// stock o lo sacó de conforme se devuelve domain.ErrConflict y la sesión queda intacta.
func (uc *ScanUseCase) Commit(ctx context.Context, id, operatorID string) (*SortieResult, error) {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if operatorID == "" {
		operatorID = s.CreatedBy
	}
	meta := uc.ledger.newMeta(entity.OperationSortie, s.ProductID, s.ProductType, operatorID)

	var committed *inventory.ScanSession
	records, err := uc.ledger.execute(ctx, "scan_commit", meta, func(_ context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		current := inventory.Aggregate(tx.records, s.ProductID, inventory.ViewPhysical)
		// se trabaja sobre una copia para que un reintento parta del estado satisfied
		cp := *s
		cp.Takes = append([]inventory.ConfirmedTake(nil), s.Takes...)
		out, err := cp.Commit(meta, current)
		if err != nil {
			return nil, err
		}
		committed = &cp
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.ledger.log.Warn().Err(err).Str("session_id", id).Msg("eliminar sesión confirmada")
	}
	return &SortieResult{OperationID: meta.OperationID, Plan: committed.Plan, Records: records}, nil
}
