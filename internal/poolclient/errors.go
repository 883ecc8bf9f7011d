package poolclient

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum"
)

// Fatal configuration errors. Both are surfaced to the caller and never
// absorbed by the safe read path.
var (
	ErrUnsupportedChain      = errors.New("unsupported chain")
	ErrReadHandleUnavailable = errors.New("ledger read handle unavailable")
)

// recoverablePatterns is the closed set of transport/ledger failure
// shapes that indicate "no data to show" rather than a broken
// connection: empty eth_call returns, calls against addresses with no
// code, reverts from uninitialized pools, and log queries with nothing
// to match. Used only when the transport gives no typed error.
var recoverablePatterns = []string{
	"returned no data",
	"empty return data",
	"no contract code",
	"execution reverted",
	"missing trie node",
	"filter not found",
	"pool not instantiated",
	"abi: attempting to unmarshal",
	"abi: improperly formatted output",
}

// isRecoverable classifies an error as an expected steady-state read
// failure. Typed transport errors are checked first; substring matching
// is the fallback for untyped node responses.
func isRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupportedChain) || errors.Is(err, ErrReadHandleUnavailable) {
		return false
	}
	if errors.Is(err, ethereum.NotFound) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range recoverablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
