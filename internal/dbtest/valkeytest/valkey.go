package valkeytest

import (
	"context"
	"encoding/json"
	"net"

	"github.com/docker/go-connections/nat"
	"github.com/valkey-io/valkey-go"

	valkeycontainer "github.com/testcontainers/testcontainers-go/modules/valkey"
	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/session"
)

const (
	Image  = "valkey/valkey:8-alpine"
	Prefix = "inventario"

	// SeededProfile has SeededTokens stored under Prefix before the tests run.
	SeededProfile = "seeded"
)

var SeededTokens = session.Tokens{Access: "seeded-access", Refresh: "seeded-refresh"}

// Start runs a ValKey container with SeededProfile stored and returns a
// connected client, the mapped port and a function releasing both.
func Start(ctx context.Context) (valkey.Client, nat.Port, func(ctx context.Context)) {
	container, err := valkeycontainer.Run(ctx, Image)
	if err != nil {
		fail(ctx, "Failed to start ValKey container", err)
	}

	port, err := container.MappedPort(ctx, nat.Port("6379"))
	if err != nil {
		fail(ctx, "Failed to map a port for the ValKey container", err)
	}

	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{Addr(port)}})
	if err != nil {
		fail(ctx, "Failed to initialise a ValKey client", err)
	}

	seed(ctx, client)

	return client, port, func(ctx context.Context) {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			fail(ctx, "Failed to terminate ValKey container", err)
		}
	}
}

// Addr is the host:port of the container on the mapped port.
func Addr(port nat.Port) string {
	return net.JoinHostPort("localhost", port.Port())
}

func seed(ctx context.Context, client valkey.Client) {
	data, err := json.Marshal(SeededTokens)
	if err != nil {
		fail(ctx, "Failed to encode seeded tokens", err)
	}

	cmd := client.B().Set().Key(Prefix + ":token:" + SeededProfile).Value(valkey.BinaryString(data)).Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		fail(ctx, "Failed to seed ValKey", err)
	}
}

func fail(ctx context.Context, msg string, err error) {
	slogctx.Error(ctx, msg, "error", err)
	panic(err)
}
