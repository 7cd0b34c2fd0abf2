package auth

import (
	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"
)

// IssueTokens signs a fresh access/refresh pair and persists the refresh
// token on the user row. Issuing replaces whatever refresh token was stored
// before, so at most one refresh token per user is ever valid.
func IssueTokens(cfg *config.Config, user *models.User) (TokenPair, error) {
	access, err := GenerateAccessToken(cfg.JWTSecret, cfg.AccessTokenTTL, user)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := GenerateRefreshToken(cfg.JWTSecret, cfg.RefreshTokenTTL, user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("refresh_token", refresh).Error; err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates the presented refresh token against the stored column and
// rotates it. The rotation is a compare-and-swap on refresh_token, so a token
// that lost a concurrent refresh race fails here instead of silently
// clobbering the winner's rotation.
func Refresh(cfg *config.Config, refreshToken string) (TokenPair, *models.User, error) {
	claims, err := ParseRefreshToken(cfg.JWTSecret, refreshToken)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	var user models.User
	if err := database.DB.Preload("Roles.Permissions").
		First(&user, "id = ?", claims.UserID).Error; err != nil {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	access, err := GenerateAccessToken(cfg.JWTSecret, cfg.AccessTokenTTL, &user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	newRefresh, err := GenerateRefreshToken(cfg.JWTSecret, cfg.RefreshTokenTTL, user.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}

	res := database.DB.Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", user.ID, refreshToken).
		Update("refresh_token", newRefresh)
	if res.Error != nil {
		return TokenPair{}, nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Rotated out by a concurrent refresh or revoked in between.
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	return TokenPair{AccessToken: access, RefreshToken: newRefresh}, &user, nil
}

// Revoke clears the stored refresh token. A no-op when nothing is stored,
// which keeps logout idempotent.
func Revoke(userID uint) error {
	return database.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil).Error
}
