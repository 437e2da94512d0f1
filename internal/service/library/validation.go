package library

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tapstampr/internal/config"
	"tapstampr/internal/domain"
	models "tapstampr/internal/domain/models/library"
	libSvc "tapstampr/internal/domain/services/library"
)

// validateCreateRequest normalizes and validates a folder creation request
func validateCreateRequest(req *libSvc.CreateFolderRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.ParentFolderID != nil && *req.ParentFolderID == "" {
		req.ParentFolderID = nil
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("folder name is required"),
			validation.RuneLength(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxFolderDescriptionLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateUpdateRequest validates a folder update request
func validateUpdateRequest(req *libSvc.UpdateFolderRequest) error {
	if req.Name == nil && !req.Description.Present {
		return fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	var rules []*validation.FieldRules
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		rules = append(rules, validation.Field(&req.Name,
			validation.Required.Error("folder name cannot be empty"),
			validation.RuneLength(1, config.MaxFolderNameLength),
		))
	}
	if err := validation.ValidateStruct(req, rules...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Description is not a top-level field pointer, so validate its value directly
	if req.Description.Value != nil {
		err := validation.Validate(*req.Description.Value,
			validation.RuneLength(0, config.MaxFolderDescriptionLength))
		if err != nil {
			return fmt.Errorf("%w: description: %v", domain.ErrValidation, err)
		}
	}
	return nil
}

// validateSettingsRequest validates a partial settings update
func validateSettingsRequest(req *libSvc.UpdateSettingsRequest) error {
	if req.SortBy == nil && req.SortOrder == nil {
		return fmt.Errorf("%w: at least one setting must be provided", domain.ErrValidation)
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.SortBy, validation.NilOrNotEmpty,
			validation.In(models.SortByDateAdded, models.SortByName, models.SortByCustom).
				Error("sortBy must be one of dateAdded, name, custom")),
		validation.Field(&req.SortOrder, validation.NilOrNotEmpty,
			validation.In(models.SortAsc, models.SortDesc).
				Error("sortOrder must be asc or desc")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateItem validates a folder item before insertion
func validateItem(item *models.FolderItem) error {
	err := validation.ValidateStruct(item,
		validation.Field(&item.Type, validation.Required, validation.RuneLength(1, config.MaxItemTypeLength)),
		validation.Field(&item.ItemID, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
