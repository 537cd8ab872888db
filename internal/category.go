package internal

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

//Category is a per-user named grouping for Tasks. Deleting a Category
//detaches referencing Tasks, it never deletes them.
type Category struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

//CreateCategoryParams defines the values required for creating a
//Category, the owner is always the resolved requester.
type CreateCategoryParams struct {
	UserID uuid.UUID
	Name   string
}

func (p CreateCategoryParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.UserID, validation.By(validUUID)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

//UpdateCategoryParams defines the values accepted for renaming a
//Category.
type UpdateCategoryParams struct {
	Name string
}

func (p UpdateCategoryParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}
