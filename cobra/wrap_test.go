package cobra

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serve struct {
	Addr    string        `cobra:"addr" short:"a" usage:"listen address"`
	Verbose bool          `cobra:"verbose,per"`
	Workers int           `cobra:"workers"`
	Wait    time.Duration `cobra:"wait"`
	Tags    []string      `cobra:"tag"`
	hidden  string        `cobra:"hidden"`

	args []string
}

func (s *serve) Run(_ *cobra.Command, args []string) error {
	s.args = args
	return nil
}

func (s *serve) Bad(int) {}

func TestICobraWrapper(t *testing.T) {
	instance := &serve{Addr: ":8080", Workers: 1}
	root := ICobraWrapper(&struct{}{}, `{"Use": "root", "Short": "root command"}`,
		ICobraWrapper(instance, `{"Use": "serve", "Short": "serve it", "Run": "Run"}`))

	cmd := root.Command()
	assert.Equal(t, "root", cmd.Use)
	assert.Equal(t, "root command", cmd.Short)

	cmd.SetArgs([]string{"serve", "-a", ":9090", "--workers", "4", "--wait", "2s", "--tag", "x,y", "--verbose", "extra"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, ":9090", instance.Addr)
	assert.Equal(t, 4, instance.Workers)
	assert.Equal(t, 2*time.Second, instance.Wait)
	assert.Equal(t, []string{"x", "y"}, instance.Tags)
	assert.True(t, instance.Verbose)
	assert.Equal(t, []string{"extra"}, instance.args)

	sub, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Nil(t, sub.Flags().Lookup("hidden"))
	assert.NotNil(t, sub.PersistentFlags().Lookup("verbose"))
	assert.Equal(t, ":8080", sub.Flags().Lookup("addr").DefValue)
}

func TestICobraWrapperBadMethod(t *testing.T) {
	assert.Panics(t, func() { ICobraWrapper(&serve{}, `{"Run": "Missing"}`) })
	assert.Panics(t, func() { ICobraWrapper(&serve{}, `{"Run": "Bad"}`) })
}
