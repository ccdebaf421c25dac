package tracing

import (
	"context"
	"testing"
)

func TestInitWithoutEndpoint(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	flush := Init(context.Background())
	if flush == nil {
		t.Fatal("expected a non-nil flush func")
	}
	flush()
}
