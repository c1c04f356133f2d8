package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeModule struct {
	name     string
	priority int
	err      error
	calls    *[]string
}

func (m *fakeModule) Name() string  { return m.name }
func (m *fakeModule) Priority() int { return m.priority }
func (m *fakeModule) Init(ctx *ModuleContext) error {
	*m.calls = append(*m.calls, m.name)
	return m.err
}

func TestOrdered(t *testing.T) {
	var calls []string
	mods := map[string]Module{
		"common": &fakeModule{name: "common", priority: 100, calls: &calls},
		"order":  &fakeModule{name: "order", priority: 20, calls: &calls},
		"upload": &fakeModule{name: "upload", priority: 10, calls: &calls},
		"admin":  &fakeModule{name: "admin", priority: 20, calls: &calls},
	}

	names := make([]string, 0, len(mods))
	for _, m := range Ordered(mods) {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"upload", "admin", "order", "common"}, names)
}

func TestInitModulesStopsOnError(t *testing.T) {
	saved := moduleRegistry
	t.Cleanup(func() { moduleRegistry = saved })

	var calls []string
	moduleRegistry = map[string]Module{}
	Register(&fakeModule{name: "a", priority: 1, calls: &calls})
	Register(&fakeModule{name: "b", priority: 2, err: errors.New("boom"), calls: &calls})
	Register(&fakeModule{name: "c", priority: 3, calls: &calls})

	err := InitModules(&ModuleContext{Log: zap.NewNop()})
	assert.ErrorContains(t, err, "init module b")
	assert.Equal(t, []string{"a", "b"}, calls)
}
