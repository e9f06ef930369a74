package etcd_test

import (
	"context"
	"testing"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/etcd"

	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestNewRegistersNamedClients(t *testing.T) {
	rt := core.NewRuntime()

	// clientv3.New 不会立即建连，离线环境也可以注册
	opt := etcd.New(
		etcd.WithClient("default"),
		etcd.WithClient("registry", func(o *etcd.EtcdClientOptions) {
			o.Endpoints = []string{"localhost:12379"}
		}),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("etcd.New failed: %v", err)
	}
	defer rt.Lifecycle.Stop(context.Background(), nil)

	for _, name := range []string{"etcd", "etcd:default", "etcd:registry", "etcdFactory"} {
		if !rt.Registry.Has(name) {
			t.Errorf("expected %q to be registered", name)
		}
	}

	client, err := di.Resolve[*clientv3.Client](rt.Registry, "etcd:registry")
	if err != nil {
		t.Fatalf("Resolve(etcd:registry) failed: %v", err)
	}
	if got := client.Endpoints(); len(got) != 1 || got[0] != "localhost:12379" {
		t.Errorf("unexpected endpoints %v", got)
	}
}

func TestBuilderValidation(t *testing.T) {
	builder := etcd.NewBuilder()
	builder.AddClient("bad", func(o *etcd.EtcdClientOptions) {
		o.Endpoints = nil
	})
	if _, err := builder.Build(nil); err == nil {
		t.Fatal("expected validation error")
	}

	builder = etcd.NewBuilder()
	builder.AddClient("dup", nil)
	builder.AddClient("dup", nil)
	if _, err := builder.Build(nil); err == nil {
		t.Fatal("expected duplicate error")
	}
}
