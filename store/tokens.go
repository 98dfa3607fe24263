package store

import (
	"context"
	"time"

	"food-ordering-api/models"

	"gorm.io/gorm/clause"
)

// RevokeToken records jti as revoked until expiresAt. Revoking twice is a no-op.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	rt := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&rt).Error
	return translate(err)
}

func (s *Store) TokenRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, now.UTC()).
		Count(&n).Error
	return n > 0, translate(err)
}

// PurgeRevokedTokens drops entries whose tokens have expired anyway.
func (s *Store) PurgeRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, translate(res.Error)
}
