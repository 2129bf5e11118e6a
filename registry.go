package handlerbot

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
)

const handlerPrefix = "Handle"

// defaultDescription is used for commands whose implementation does not
// provide one via Describer.
const defaultDescription = "Command"

// maxDescriptionLen is the Bot API limit for a command description.
const maxDescriptionLen = 256

// Describer lets a bot implementation supply command descriptions for the
// auto-generated help listing and for command registration with the platform.
// Descriptions are looked up once per bot type, so the returned map must not
// vary between instances.
type Describer interface {
	CommandDescriptions() map[string]string
}

// Descriptor describes one discovered command.
type Descriptor struct {
	Command     string // derived command name, e.g. "bot_father"
	Method      string // method the command was derived from, empty if synthesized
	Description string

	synthesized bool          // auto-generated /help
	fn          reflect.Value // unbound method func
}

func (d *Descriptor) call(recv reflect.Value, ctx context.Context, e *Event, args string) error {
	out := d.fn.Call([]reflect.Value{recv, reflect.ValueOf(ctx), reflect.ValueOf(e), reflect.ValueOf(args)})
	if err, ok := out[0].Interface().(error); ok && err != nil {
		return err
	}
	return nil
}

// Registry maps command names to their handlers. It is built once per bot
// type, before the first dispatch, and never mutated afterwards, so concurrent
// reads need no locking.
type Registry struct {
	commands map[string]*Descriptor
	sorted   []*Descriptor
}

// Get returns the descriptor for a command name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.commands[name]
	return d, ok
}

// Commands returns all descriptors sorted by command name.
func (r *Registry) Commands() []*Descriptor {
	return r.sorted
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

var registries sync.Map // reflect.Type -> registryEntry

type registryEntry struct {
	reg *Registry
	err error
}

// registryFor returns the command registry for the implementation's type,
// building it on first use. Discovery runs once per type for the process
// lifetime; a configuration error is sticky for that type.
func registryFor(impl any) (*Registry, error) {
	t := reflect.TypeOf(impl)
	if e, ok := registries.Load(t); ok {
		entry := e.(registryEntry)
		return entry.reg, entry.err
	}
	reg, err := discover(impl)
	entry, _ := registries.LoadOrStore(t, registryEntry{reg: reg, err: err})
	return entry.(registryEntry).reg, entry.(registryEntry).err
}

// discover inspects the implementation's method set, including methods
// promoted from embedded types, and builds its command registry.
func discover(impl any) (*Registry, error) {
	t := reflect.TypeOf(impl)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bot implementation must be a pointer to a struct, got %T", impl)
	}

	var descriptions map[string]string
	if d, ok := impl.(Describer); ok {
		descriptions = d.CommandDescriptions()
	}

	commands := make(map[string]*Descriptor)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		name := commandName(m.Name)
		if name == "" {
			continue
		}
		if !validCommandName(name) {
			return nil, fmt.Errorf("method %s derives invalid command name %q", m.Name, name)
		}
		if err := checkSignature(m); err != nil {
			return nil, err
		}
		if prev, ok := commands[name]; ok {
			return nil, fmt.Errorf("command %q derived from both %s and %s", name, prev.Method, m.Name)
		}
		commands[name] = &Descriptor{
			Command:     name,
			Method:      m.Name,
			Description: description(descriptions, name),
			fn:          m.Func,
		}
	}

	if _, ok := commands["help"]; !ok {
		commands["help"] = &Descriptor{
			Command:     "help",
			Description: "List available commands",
			synthesized: true,
		}
	}

	sorted := make([]*Descriptor, 0, len(commands))
	for _, d := range commands {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Command < sorted[j].Command })

	return &Registry{commands: commands, sorted: sorted}, nil
}

// commandName derives the command name from a method name, or returns ""
// if the method is not a handler. Handle_echo passes through as "echo";
// a camel-case tail gets an underscore before each upper-case rune, so
// HandleBotFather becomes "bot_father".
func commandName(method string) string {
	if !strings.HasPrefix(method, handlerPrefix) {
		return ""
	}
	tail := method[len(handlerPrefix):]
	if tail == "" {
		return ""
	}
	if tail[0] == '_' {
		return strings.ToLower(tail[1:])
	}
	if !unicode.IsUpper(rune(tail[0])) {
		return ""
	}
	var b strings.Builder
	for i, r := range tail {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// validCommandName reports whether a derived name is acceptable to the Bot
// API: 1 to 32 lower-case ASCII letters, digits and underscores.
func validCommandName(name string) bool {
	if len(name) == 0 || len(name) > 32 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

var (
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType    = reflect.TypeOf((*error)(nil)).Elem()
	eventType  = reflect.TypeOf((*Event)(nil))
	stringType = reflect.TypeOf("")
)

func checkSignature(m reflect.Method) error {
	ft := m.Func.Type()
	ok := ft.NumIn() == 4 &&
		ft.In(1) == ctxType &&
		ft.In(2) == eventType &&
		ft.In(3) == stringType &&
		ft.NumOut() == 1 &&
		ft.Out(0) == errType
	if !ok {
		return fmt.Errorf("method %s must have signature func(context.Context, *Event, string) error", m.Name)
	}
	return nil
}

func description(descriptions map[string]string, name string) string {
	d := descriptions[name]
	if d == "" {
		return defaultDescription
	}
	if runes := []rune(d); len(runes) > maxDescriptionLen {
		return string(runes[:maxDescriptionLen])
	}
	return d
}
