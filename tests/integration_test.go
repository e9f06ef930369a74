package tests

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// MockDialector 最小化实现，跳过实际 DB 连接
type MockDialector struct{}

func (m MockDialector) Name() string                                                        { return "mock" }
func (m MockDialector) Initialize(db *gorm.DB) error                                        { return nil }
func (m MockDialector) Migrator(db *gorm.DB) gorm.Migrator                                  { return nil }
func (m MockDialector) DataTypeOf(field *schema.Field) string                               { return "" }
func (m MockDialector) DefaultValueOf(field *schema.Field) clause.Expression                { return clause.Expr{} }
func (m MockDialector) BindVarTo(writer clause.Writer, stmt *gorm.Statement, v interface{}) {}
func (m MockDialector) QuoteTo(writer clause.Writer, str string)                            {}
func (m MockDialector) Explain(sql string, vars ...interface{}) string                      { return "" }

// TestService 模拟业务服务
type TestService struct {
	db  *gorm.DB
	cfg config.Configuration
}

type testServiceDeps struct {
	DB     *gorm.DB             `inject:"db"`
	Config config.Configuration `inject:"config"`
}

func NewTestService(deps testServiceDeps) *TestService {
	return &TestService{db: deps.DB, cfg: deps.Config}
}

func (s *TestService) AppName() string {
	if s.cfg == nil {
		return "no-config"
	}
	return s.cfg.Get("app.name")
}

// TestController 模拟控制器
type TestController struct {
	service *TestService
}

type testControllerDeps struct {
	Service *TestService `inject:"testService"`
}

func NewTestController(deps testControllerDeps) *TestController {
	return &TestController{service: deps.Service}
}

func (c *TestController) MountRoutes(r gin.IRouter) {
	r.GET("/ping", func(ctx *gin.Context) {
		name := c.service.AppName()
		if c.service.db == nil {
			name += "-nodb"
		}
		ctx.String(http.StatusOK, "pong: "+name)
	})
}

func TestIntegration(t *testing.T) {
	rt := core.NewRuntime()

	t.Setenv("TESTINT__APP__NAME", "IntegrationTest")

	err := rt.Apply(
		// 1. Config (环境变量源)
		func(rt *core.Runtime) error {
			cfg, err := config.NewConfigurationBuilder().
				AddEnvironmentVariables("TESTINT").
				Build()
			if err != nil {
				return err
			}
			return config.Export(cfg, rt.Registry)
		},

		// 2. Database (Mock，不真正连接)
		func(rt *core.Runtime) error {
			mockDB := &gorm.DB{Config: &gorm.Config{Dialector: MockDialector{}}}
			return rt.Register("db", mockDB)
		},

		// 3. 业务服务
		func(rt *core.Runtime) error {
			return rt.Provide("testService", NewTestService)
		},

		// 4. Web (随机端口)
		web.New(
			web.WithController("testController", NewTestController),
			web.WithPort(0),
		),
	)
	require.NoError(t, err, "Apply options failed")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, rt.Start(ctx), "runtime start failed")
	defer rt.Stop(ctx, nil)

	host := core.GetFeature[*web.Host](rt)
	require.NotNil(t, host, "web host feature not found")

	addr := ""
	for i := 0; i < 40; i++ {
		addr = host.Address()
		if addr != "" && addr != ":0" {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NotEmpty(t, addr, "web host address is empty after waiting")
	t.Logf("web host running at %s", addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", addr))
	require.NoError(t, err, "HTTP GET failed")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong: IntegrationTest", string(body))
}

// TestWorker for HostedService test
type TestWorker struct {
	Started chan struct{}
	Stopped chan struct{}
	StopCh  chan struct{}
}

func (w *TestWorker) Start(ctx context.Context) error {
	close(w.Started)
	<-w.StopCh // 模拟阻塞直到 Stop 被调用
	return nil
}

func (w *TestWorker) Stop(ctx context.Context) error {
	close(w.StopCh)
	time.Sleep(10 * time.Millisecond)
	close(w.Stopped)
	return nil
}

func TestHostedService(t *testing.T) {
	rt := core.NewRuntime()

	worker := &TestWorker{
		Started: make(chan struct{}),
		Stopped: make(chan struct{}),
		StopCh:  make(chan struct{}),
	}

	err := rt.Apply(
		core.WithHostedService("testWorker", func() *TestWorker { return worker }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, rt.Start(ctx))

	select {
	case <-worker.Started:
	case <-time.After(time.Second):
		t.Error("worker should be started")
	}

	rt.Stop(ctx, nil)

	select {
	case <-worker.Stopped:
	case <-time.After(time.Second):
		t.Error("worker should be stopped")
	}
}

func TestConfigKeysInjectedByName(t *testing.T) {
	rt := core.NewRuntime()

	err := rt.Apply(func(rt *core.Runtime) error {
		cfg, err := config.NewConfigurationBuilder().
			AddInMemory(map[string]any{
				"web": map[string]any{"port": 9090},
			}).
			Build()
		if err != nil {
			return err
		}
		return config.Export(cfg, rt.Registry)
	})
	require.NoError(t, err)

	type deps struct {
		Port int `inject:"config:web.port"`
	}

	result, err := rt.Invoke(func(d deps) int { return d.Port })
	require.NoError(t, err)
	assert.Equal(t, 9090, result)
}
