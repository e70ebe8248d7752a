package helpers

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/simonbindefeld/merkleproof-service/internal/constants"
)

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case constants.ProdEnvironment, constants.DevEnvironment, constants.LocalEnvironment, constants.TestEnvironment:
		return true
	default:
		return false
	}
}

// IsAddressValid checks if the provided string is a 0x-prefixed 20-byte hex address
func IsAddressValid(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// IsPrivateKeyValid checks if the provided string is a 0x-prefixed 32-byte hex key
func IsPrivateKeyValid(key string) bool {
	if len(key) != 66 || !strings.HasPrefix(key, "0x") {
		return false
	}
	for _, c := range key[2:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
