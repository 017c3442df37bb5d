package common_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/damilsoft/payment-service/internal/common"
)

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("stripe: card declined")
	appErr := common.NewAppError("STRIPE_REJECTED", "stripe rejected the request", http.StatusBadRequest, cause)

	require.Equal(t, "stripe: card declined", appErr.Error())
	require.ErrorIs(t, appErr, cause)
	require.True(t, common.IsAppError(appErr))
	require.True(t, common.IsAppError(fmt.Errorf("handler: %w", appErr)))
	require.False(t, common.IsAppError(cause))
}

func TestAppErrorMessageFallback(t *testing.T) {
	appErr := common.NewAppError("CHECKOUT_FAILED", "checkout session could not be created", http.StatusInternalServerError, nil)
	require.Equal(t, "checkout session could not be created", appErr.Error())
}
