package company

import (
	"errors"
	"testing"

	"tms/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompanyRecordsCreatedEvent(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12.345.678/0001-95")
	require.NoError(t, err)

	assert.Equal(t, StatusActive, c.Status())
	assert.Equal(t, "12345678000195", c.Cnpj().String())
	assert.Equal(t, 1, c.Version())

	events := c.PullEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*CompanyCreated)
	require.True(t, ok)
	assert.Equal(t, c.CompanyID(), created.CompanyID)
	assert.Equal(t, "integration.company.CompanyCreated", created.RoutingKey())
	assert.NotEqual(t, uuid.Nil, created.EventID())

	// Pulling drains the recorder
	assert.Empty(t, c.PullEvents())
}

func TestNewCompanyValidation(t *testing.T) {
	_, err := NewCompany("", "12345678000195")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewCompany("Acme", "123")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAddAgreementRecordsEventAndBumpsVersion(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12345678000195")
	require.NoError(t, err)
	c.PullEvents()

	destination := uuid.New()
	agreement, err := c.AddAgreement(destination, AgreementTypeDistribution)
	require.NoError(t, err)
	assert.Equal(t, destination, agreement.DestinationCompanyID)
	assert.Equal(t, 2, c.Version())

	events := c.PullEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*AgreementCreated)
	require.True(t, ok)
	assert.Equal(t, agreement.AgreementID, created.AgreementID)
}

func TestAddAgreementRejectsSelf(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12345678000195")
	require.NoError(t, err)

	_, err = c.AddAgreement(c.CompanyID(), AgreementTypeTransport)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAddAgreementRejectsDuplicate(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12345678000195")
	require.NoError(t, err)

	destination := uuid.New()
	_, err = c.AddAgreement(destination, AgreementTypeDistribution)
	require.NoError(t, err)

	_, err = c.AddAgreement(destination, AgreementTypeDistribution)
	require.ErrorIs(t, err, shared.ErrConflict)

	// Same destination with another type is a different agreement
	_, err = c.AddAgreement(destination, AgreementTypeTransport)
	require.NoError(t, err)
}

func TestRemoveAgreement(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12345678000195")
	require.NoError(t, err)
	destination := uuid.New()
	agreement, err := c.AddAgreement(destination, AgreementTypeDistribution)
	require.NoError(t, err)
	c.PullEvents()

	require.NoError(t, c.RemoveAgreement(agreement.AgreementID))
	assert.Empty(t, c.Agreements())

	events := c.PullEvents()
	require.Len(t, events, 1)
	removed, ok := events[0].(*AgreementRemoved)
	require.True(t, ok)
	assert.Equal(t, agreement.AgreementID, removed.AgreementID)

	err = c.RemoveAgreement(agreement.AgreementID)
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestRestoreDoesNotRecordEvents(t *testing.T) {
	c, err := NewCompany("Acme Logistics", "12345678000195")
	require.NoError(t, err)

	restored := Restore(c.CompanyID(), c.Name(), c.Cnpj().String(), c.Status(), nil, c.Version(), c.CreatedAt(), c.UpdatedAt())
	assert.Empty(t, restored.PullEvents())
}
