package loader

import (
	"context"
	"strings"

	"github.com/jhump/protoreflect/grpcreflect"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/wippyai/contract/errors"
)

const reflectionPrefix = "grpc.reflection."

// LoadGRPC asks a running server for its services over gRPC server
// reflection and converts them like LoadProto. With no services named, every
// service except the reflection service itself is loaded.
func (l *Loader) LoadGRPC(ctx context.Context, target string, services ...string) (*Set, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Load("connect "+target, err)
	}
	defer conn.Close()

	client := grpcreflect.NewClientAuto(ctx, conn)
	defer client.Reset()

	if len(services) == 0 {
		names, err := client.ListServices()
		if err != nil {
			return nil, errors.Load("list services of "+target, err)
		}
		for _, name := range names {
			if !strings.HasPrefix(name, reflectionPrefix) {
				services = append(services, name)
			}
		}
	}

	c := &protoConverter{l: l, set: newSet()}
	for _, name := range services {
		sd, err := client.ResolveService(name)
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Value(name).
				Cause(err).
				Detail("resolve service %s", name).
				Build()
		}
		s, err := c.service(sd)
		if err != nil {
			return nil, err
		}
		if err := c.set.add(s); err != nil {
			return nil, err
		}
	}

	Logger().Debug("grpc contracts loaded",
		zap.String("target", target),
		zap.Strings("contracts", c.set.Names()))
	return c.set, nil
}
