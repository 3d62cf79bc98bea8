package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/pageflow/lib/types"
)

// Panic if the given error is not nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// flagValue reads key with get and reports whether the user set it. Reading
// a flag that was never declared is a programming error and panics.
func flagValue[T any](flags *pflag.FlagSet, key string, get func(string) (T, error)) (T, bool) {
	v, err := get(key)
	if err != nil {
		panic(fmt.Sprintf("reading flag --%s: %s", key, err))
	}
	return v, flags.Changed(key)
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	return null.NewBool(flagValue(flags, key, flags.GetBool))
}

func getNullInt64(flags *pflag.FlagSet, key string) null.Int {
	return null.NewInt(flagValue(flags, key, flags.GetInt64))
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	return null.NewString(flagValue(flags, key, flags.GetString))
}

func getNullDuration(flags *pflag.FlagSet, key string) types.NullDuration {
	return types.NewNullDuration(flagValue(flags, key, flags.GetDuration))
}

// exactArgsWithMsg is cobra.ExactArgs with a usage note appended.
func exactArgsWithMsg(n int, msg string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("accepts %d arg(s), received %d: %s", n, len(args), msg)
		}
		return nil
	}
}
