package service

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrInvalidMenuType    = errors.New("menu_type must be guests, staff or all")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrDeliveryDisabled   = errors.New("sheet delivery is not configured")
)
