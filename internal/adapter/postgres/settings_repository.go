package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/domain"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type settingsRepository struct {
	db DB
}

func NewSettingsRepository(db DB) interfaces.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetPromotionSettings decodes the location's promotion_settings document. A
// missing location or empty document is unavailable; a document that does not
// decode or validate is invalid.
func (r *settingsRepository) GetPromotionSettings(ctx context.Context, tenantID, locationID string) (domain.PromotionSettings, error) {
	query := `
		SELECT promotion_settings
		FROM locations
		WHERE tenant_id = $1 AND id = $2
	`

	var raw []byte
	err := r.db.QueryRow(ctx, query, tenantID, locationID).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return domain.PromotionSettings{}, fmt.Errorf("%w: location %s not found", domain.ErrConfigurationUnavailable, locationID)
		}
		return domain.PromotionSettings{}, fmt.Errorf("failed to load promotion settings: %w", err)
	}

	return decodePromotionSettings(raw)
}

func (r *settingsRepository) GetLocation(ctx context.Context, tenantID, locationID string) (domain.LocationSettings, error) {
	query := `
		SELECT tax_rate::text, delivery_fee::text, COALESCE(timezone, '')
		FROM locations
		WHERE tenant_id = $1 AND id = $2
	`

	var taxRate, deliveryFee string
	loc := domain.LocationSettings{TenantID: tenantID, LocationID: locationID}
	err := r.db.QueryRow(ctx, query, tenantID, locationID).Scan(&taxRate, &deliveryFee, &loc.Timezone)
	if err != nil {
		if isNoRows(err) {
			return domain.LocationSettings{}, fmt.Errorf("location %s not found", locationID)
		}
		return domain.LocationSettings{}, fmt.Errorf("failed to load location: %w", err)
	}

	if loc.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return domain.LocationSettings{}, fmt.Errorf("%w: tax rate %q", domain.ErrConfigurationInvalid, taxRate)
	}
	if loc.DeliveryFee, err = decimal.NewFromString(deliveryFee); err != nil {
		return domain.LocationSettings{}, fmt.Errorf("%w: delivery fee %q", domain.ErrConfigurationInvalid, deliveryFee)
	}
	if err := loc.Validate(); err != nil {
		return domain.LocationSettings{}, err
	}
	return loc, nil
}

func decodePromotionSettings(raw []byte) (domain.PromotionSettings, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return domain.PromotionSettings{}, fmt.Errorf("%w: promotion settings not configured", domain.ErrConfigurationUnavailable)
	}

	settings := domain.DefaultPromotionSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.PromotionSettings{}, fmt.Errorf("%w: %v", domain.ErrConfigurationInvalid, err)
	}
	if err := settings.Validate(); err != nil {
		return domain.PromotionSettings{}, err
	}
	return settings, nil
}
