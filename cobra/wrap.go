// Package cobra builds cobra commands from annotated structs. Flags come
// from struct tags, the command metadata from a small JSON document:
//
//	type serve struct {
//		Addr string `cobra:"addr" short:"a" usage:"listen address"`
//	}
//
//	func (s *serve) Run(cmd *cobra.Command, args []string) error { ... }
//
//	cmd := cobra.ICobraWrapper(&serve{}, `{"Use": "serve", "Run": "Run"}`)
//
// A tag of the form `cobra:"name,per"` registers a persistent flag.
package cobra

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
)

type Command = cobra.Command

type ICobra interface {
	Command() *cobra.Command
}

type singleCobra struct {
	cmd *cobra.Command
}

func (c *singleCobra) Command() *cobra.Command {
	return c.cmd
}

func ICobraWrapper(instance interface{}, config string, children ...ICobra) (c ICobra) {
	cmd := &cobra.Command{}
	c = &singleCobra{cmd}
	for _, it := range children {
		cmd.AddCommand(it.Command())
	}

	parser := gjson.Parse(config)
	bindField(parser, "Use", func(value string) { cmd.Use = value })
	bindField(parser, "Short", func(value string) { cmd.Short = value })
	bindField(parser, "Long", func(value string) { cmd.Long = value })
	bindField(parser, "Version", func(value string) { cmd.Version = value })
	bindField(parser, "Example", func(value string) { cmd.Example = value })
	cmd.SilenceUsage = parser.Get("SilenceUsage").Bool()

	value := reflect.ValueOf(instance)
	bindMethod(parser, value, "Run", cmd)

	bindTag(cmd, value)
	return
}

func bindField(parser gjson.Result, field string, f func(string)) {
	if result := parser.Get(field); result.Exists() {
		if field = result.String(); field != "" {
			f(field)
		}
	}
}

var (
	runType  = reflect.TypeOf(func(*cobra.Command, []string) {})
	runEType = reflect.TypeOf(func(*cobra.Command, []string) error { return nil })
)

func bindMethod(parser gjson.Result, value reflect.Value, field string, cmd *cobra.Command) {
	name := parser.Get(field).String()
	if name == "" {
		return
	}

	method := value.MethodByName(name)
	if !method.IsValid() {
		panic("`" + name + "` method is not exist")
	}

	switch method.Type() {
	case runType:
		cmd.Run = method.Interface().(func(*cobra.Command, []string))
	case runEType:
		cmd.RunE = method.Interface().(func(*cobra.Command, []string) error)
	default:
		panic(fmt.Sprintf("`%s` method must be %s or %s, got %s", name, runType, runEType, method.Type()))
	}
}

func bindTag(cmd *cobra.Command, value reflect.Value) {
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}

	for i := range value.NumField() {
		lookup, ok := value.Type().Field(i).Tag.Lookup("cobra")
		if !ok || lookup == "" {
			continue
		}

		name, scope, _ := strings.Cut(lookup, ",")
		if name = strings.TrimSpace(name); name == "" {
			continue
		}

		short := value.Type().Field(i).Tag.Get("short")
		usage := value.Type().Field(i).Tag.Get("usage")

		flags := cmd.Flags()
		if strings.TrimSpace(scope) == "per" {
			flags = cmd.PersistentFlags()
		}

		setter(flags, value.Field(i), name, short, usage)
	}
}

// setter registers a flag bound to the field, its current value is the
// default. Unexported fields and unsupported kinds are skipped.
func setter(flags *pflag.FlagSet, value reflect.Value, name, short, usage string) {
	if !value.CanSet() {
		return
	}

	switch ptr := value.Addr().Interface().(type) {
	case *string:
		flags.StringVarP(ptr, name, short, *ptr, usage)
	case *bool:
		flags.BoolVarP(ptr, name, short, *ptr, usage)
	case *int:
		flags.IntVarP(ptr, name, short, *ptr, usage)
	case *int8:
		flags.Int8VarP(ptr, name, short, *ptr, usage)
	case *int16:
		flags.Int16VarP(ptr, name, short, *ptr, usage)
	case *int32:
		flags.Int32VarP(ptr, name, short, *ptr, usage)
	case *int64:
		flags.Int64VarP(ptr, name, short, *ptr, usage)
	case *uint:
		flags.UintVarP(ptr, name, short, *ptr, usage)
	case *uint8:
		flags.Uint8VarP(ptr, name, short, *ptr, usage)
	case *uint16:
		flags.Uint16VarP(ptr, name, short, *ptr, usage)
	case *uint32:
		flags.Uint32VarP(ptr, name, short, *ptr, usage)
	case *uint64:
		flags.Uint64VarP(ptr, name, short, *ptr, usage)
	case *float32:
		flags.Float32VarP(ptr, name, short, *ptr, usage)
	case *float64:
		flags.Float64VarP(ptr, name, short, *ptr, usage)
	case *time.Duration:
		flags.DurationVarP(ptr, name, short, *ptr, usage)
	case *[]string:
		flags.StringSliceVarP(ptr, name, short, *ptr, usage)
	}
}
