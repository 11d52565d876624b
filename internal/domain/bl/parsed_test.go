package bl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

func TestOrderType(t *testing.T) {
	withContainers := &ParsedBL{Containers: []shipment.Container{{ContainerNumber: strp("MSKU1234567")}}}
	assert.Equal(t, shipment.OrderSeaFCL, withContainers.OrderType())

	lcl := "LCL/LCL"
	withLCLTerms := &ParsedBL{DeliveryStatus: &lcl}
	assert.Equal(t, shipment.OrderSeaLCL, withLCLTerms.OrderType())

	fcl := "FCL/FCL"
	withFCLTerms := &ParsedBL{DeliveryStatus: &fcl}
	assert.Equal(t, shipment.OrderSeaFCL, withFCLTerms.OrderType())

	empty := &ParsedBL{}
	assert.Equal(t, shipment.OrderSeaFCL, empty.OrderType())
}

func TestInitialStatus(t *testing.T) {
	today := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)

	past := "2026-08-01"
	assert.Equal(t, status.Departed, InitialStatus(&past, today))

	sameDay := "2026-08-24"
	assert.Equal(t, status.Departed, InitialStatus(&sameDay, today))

	future := "2099-01-01"
	assert.Equal(t, status.BookingConfirmed, InitialStatus(&future, today))

	withTime := "2026-08-01T10:00:00Z"
	assert.Equal(t, status.Departed, InitialStatus(&withTime, today))

	garbage := "on or about August"
	assert.Equal(t, status.BookingConfirmed, InitialStatus(&garbage, today))

	empty := ""
	assert.Equal(t, status.BookingConfirmed, InitialStatus(&empty, today))
	assert.Equal(t, status.BookingConfirmed, InitialStatus(nil, today))
}

func strp(s string) *string { return &s }
