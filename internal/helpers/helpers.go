package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AvatarFolder   = "avatars"
	HotelFolder    = "hotels"
	PackageFolder  = "packages"
	PropertyFolder = "properties"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HMAC bearer token carrying the user id and role.
func GenerateToken(secret, userID, role, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[@$!%*?&]`).MatchString(password)
	return hasLower && hasUpper && hasNumber && hasSpecial
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug builds a url-safe slug from the name and city plus a short
// random suffix so retries never collide on the unique index.
func GenerateSlug(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	slug := strings.Trim(slugCleaner.ReplaceAllString(joined, "-"), "-")
	suffix := strings.Split(uuid.New().String(), "-")[0]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

func RemoveDuplicates(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// UploadImages pushes the given local paths or data URIs to Cloudinary and
// returns the secure URLs with their public ids, index-aligned.
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, images []string, folder string) ([]string, []string, error) {
	var urls, publicIDs []string
	for _, filePath := range images {
		if strings.TrimSpace(filePath) == "" {
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"wanderbay"},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to upload image %s: %v", filePath, err)
		}
		urls = append(urls, uploadResult.SecureURL)
		publicIDs = append(publicIDs, uploadResult.PublicID)
	}
	return urls, publicIDs, nil
}

// DeleteImages is best-effort cleanup of replaced images; errors are
// aggregated so a partial failure is still visible to the caller's log.
func DeleteImages(ctx context.Context, cld *cloudinary.Cloudinary, publicIDs []string) error {
	var failed []string
	for _, id := range publicIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		_, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
		if err != nil {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to delete images: %s", strings.Join(failed, ", "))
	}
	return nil
}
