package inventory_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

const testProduct = "PRD-001"

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func day(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

// recordBuilder arma registros con IDs y timestamps crecientes.
type recordBuilder struct {
	nextID int64
	clock  time.Time
}

func newBuilder() *recordBuilder {
	return &recordBuilder{clock: t0}
}

func (b *recordBuilder) rec(dir entity.Direction, lot string, loc, sub int64, qty int64, q entity.QualityStatus) entity.MovementRecord {
	b.nextID++
	b.clock = b.clock.Add(time.Minute)
	return entity.MovementRecord{
		ID:              b.nextID,
		ProductID:       testProduct,
		ProductType:     entity.ProductTypeRawMaterial,
		Direction:       dir,
		Operation:       entity.OperationEntree,
		Quantity:        qty,
		LocationID:      loc,
		SubLocationID:   sub,
		SubLocationKind: entity.SubLocationEtage,
		LotID:           lot,
		QualityStatus:   q,
		UnitCost:        decimal.NewFromInt(10),
		CreatedAt:       b.clock,
	}
}

func (b *recordBuilder) in(lot string, loc, sub, qty int64, q entity.QualityStatus) entity.MovementRecord {
	return b.rec(entity.DirectionEntree, lot, loc, sub, qty, q)
}

func (b *recordBuilder) out(lot string, loc, sub, qty int64, q entity.QualityStatus) entity.MovementRecord {
	r := b.rec(entity.DirectionSortie, lot, loc, sub, qty, q)
	r.Operation = entity.OperationSortie
	return r
}

func withDates(r entity.MovementRecord, fab, exp string) entity.MovementRecord {
	if fab != "" {
		r.FabricationDate = day(fab)
	}
	if exp != "" {
		r.ExpirationDate = day(exp)
	}
	return r
}

func zone(id int64, subs ...entity.SubLocation) entity.Location {
	for i := range subs {
		subs[i].LocationID = id
		subs[i].Position = i
	}
	return entity.Location{ID: id, Name: "Zona", SubLocations: subs}
}

func floor(id, capacity int64) entity.SubLocation {
	return entity.SubLocation{ID: id, Kind: entity.SubLocationEtage, TotalCapacity: capacity}
}

func group(lot string, sub, available int64, q entity.QualityStatus, fab, exp string) entity.StockGroup {
	g := entity.StockGroup{
		Key:           entity.GroupKey{LotID: lot, LocationID: 1, SubLocationID: sub},
		ProductID:     testProduct,
		Entree:        available,
		Available:     available,
		QualityStatus: q,
	}
	if fab != "" {
		g.FabricationDate = day(fab)
	}
	if exp != "" {
		g.ExpirationDate = day(exp)
	}
	return g
}
