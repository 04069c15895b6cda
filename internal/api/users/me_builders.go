package users

import (
	"lessons-api/internal/domain/access"
	"lessons-api/internal/domain/users"
)

func BuildMeResponse(u users.User) MeResponse {
	policy := access.ComputePolicy(u)
	return MeResponse{
		User: UserDTO{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      policy.Role,
			CreatedAt: u.CreatedAt,
		},
		Premium: BuildPremiumDTO(u),
		Access: AccessDTO{
			State:        string(policy.State),
			Capabilities: policy.Capabilities,
		},
	}
}

func BuildPremiumDTO(u users.User) *PremiumDTO {
	if !u.IsPremium {
		return nil
	}
	dto := &PremiumDTO{PurchasedAt: u.PurchasedAt}
	if u.TrackingID != nil {
		dto.TrackingID = *u.TrackingID
	}
	return dto
}
