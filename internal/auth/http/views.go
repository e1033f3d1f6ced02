package http

import (
	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/pkg/authsdk"
)

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role.String(),
		IsActive:       u.IsActive,
		TelegramLinked: u.HasNotificationHandle(),
		TelegramChatID: u.TelegramChatID,
		CreatedAt:      u.CreatedAt,
	}
}

func toVehicleResponse(v domain.Vehicle) authsdk.VehicleResponse {
	return authsdk.VehicleResponse{
		ID:             v.ID,
		Manufacturer:   v.Manufacturer,
		Model:          v.Model,
		Year:           v.Year,
		VIN:            v.VIN,
		LicensePlate:   v.LicensePlate,
		Color:          v.Color,
		InitialMileage: v.InitialMileage,
		CurrentMileage: v.CurrentMileage,
		ImageFilename:  v.ImageFilename,
		CreatedAt:      v.CreatedAt,
	}
}

func toAdminUserResponse(row service.UserWithVehicles) authsdk.AdminUserResponse {
	vehicles := make([]authsdk.VehicleResponse, 0, len(row.Vehicles))
	for _, v := range row.Vehicles {
		vehicles = append(vehicles, toVehicleResponse(v))
	}
	return authsdk.AdminUserResponse{
		UserResponse: toUserResponse(row.User),
		Vehicles:     vehicles,
	}
}
