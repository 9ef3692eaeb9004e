package inventory

import "errors"

var (
	ErrMaxNodes                 = errors.New("inventory: processor class saturated")
	ErrNodeNameConflict         = errors.New("inventory: node name already in use")
	ErrNodeNotFound             = errors.New("inventory: node not found")
	ErrUPIConflict              = errors.New("inventory: upi already assigned")
	ErrUPIInvalid               = errors.New("inventory: upi out of range for class")
	ErrCannotConnect            = errors.New("inventory: edge not in allow-list")
	ErrChannelModuleIndexConflict = errors.New("inventory: channel-module index out of range or in use")
	ErrDeviceIndexConflict      = errors.New("inventory: device index out of range or in use")
	ErrChannelModuleHasAncestor = errors.New("inventory: channel module already has an ancestor")
	ErrDuplicateEdge            = errors.New("inventory: edge already exists")
	ErrOrphanChannelModule      = errors.New("inventory: channel module has no IOP ancestor")
	ErrAlreadySystemProcessor   = errors.New("inventory: at most one system processor allowed")
)
