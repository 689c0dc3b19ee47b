package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/piyushdaiya/dotescrow-kit/internal/comments"
	"github.com/piyushdaiya/dotescrow-kit/internal/core"
	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
	"github.com/piyushdaiya/dotescrow-kit/internal/validator"
	"github.com/spf13/cobra"
)

var errInvalidAddress = errors.New("address is not valid")

func CmdValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <address>",
		Short: "Validate an SS58 account address. Exits non-zero when invalid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := ss58.ValidateAddress(args[0])
			if err := printResult(cmd, res); err != nil {
				return err
			}
			if !res.IsValid {
				return errInvalidAddress
			}
			return nil
		},
	}
}

func CmdInspect() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <address>",
		Short: "Decode an SS58 or H160 address and check it against the watchlist engine.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := unwrapConfig(cmd.Context())
			engineURL := cfg.EngineURL
			if offline, _ := cmd.Flags().GetBool("offline"); offline {
				engineURL = ""
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
			defer cancel()

			profile, err := validator.Profile(ctx, validator.DefaultStrategies(), args[0], engineURL)
			if err != nil {
				return fmt.Errorf("could not inspect %s: %v", args[0], err)
			}
			return printResult(cmd, profile)
		},
	}
	cmd.Flags().Bool("offline", false, "Skip the watchlist engine")
	return cmd
}

func CmdFormat() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <address>",
		Short: "Shorten an address for display.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetInt("start")
			end, _ := cmd.Flags().GetInt("end")
			address := args[0]
			if ss58.IsH160(address) {
				fmt.Fprintln(cmd.OutOrStdout(), ss58.FormatH160(address, start, end))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ss58.FormatAddressForDisplay(address, start, end))
			return nil
		},
	}
	cmd.Flags().Int("start", 6, "Characters kept at the start")
	cmd.Flags().Int("end", 6, "Characters kept at the end")
	return cmd
}

type conversion struct {
	Input  string             `json:"input" yaml:"input"`
	Format ss58.AddressFormat `json:"format" yaml:"format"`
	Output string             `json:"output,omitempty" yaml:"output,omitempty"`
	Prefix *uint16            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Lossy  bool               `json:"lossy,omitempty" yaml:"lossy,omitempty"`
}

func CmdConvert() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between SS58 and H160 address formats.",
	}
	cmd.AddCommand(cmdConvertH160())
	cmd.AddCommand(cmdConvertSS58())
	cmd.AddCommand(cmdConvertReencode())
	cmd.AddCommand(cmdConvertDetect())
	return cmd
}

func cmdConvertH160() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "h160 <ss58-address>",
		Short: "Map an SS58 account to a 20 byte H160 address.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert := ss58.SS58ToH160
			if revive, _ := cmd.Flags().GetBool("revive"); revive {
				convert = ss58.SubstrateToH160
			}
			out, err := convert(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, conversion{Input: args[0], Format: ss58.AddressFormatH160, Output: out})
		},
	}
	cmd.Flags().Bool("revive", false, "Use the pallet-revive keccak256 mapping instead of the trailing 20 bytes")
	return cmd
}

func cmdConvertSS58() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ss58 <h160-address>",
		Short: "Render an H160 address as SS58. The result is for display only.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetUint16("prefix")
			out, err := ss58.H160ToSS58(args[0], prefix)
			if err != nil {
				return err
			}
			return printResult(cmd, conversion{
				Input:  args[0],
				Format: ss58.AddressFormatSS58,
				Output: out,
				Prefix: &prefix,
				Lossy:  true,
			})
		},
	}
	cmd.Flags().Uint16("prefix", ss58.DefaultSS58Prefix, "SS58 network prefix")
	return cmd
}

func cmdConvertReencode() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reencode <ss58-address>",
		Short: "Render an SS58 account for another network prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetUint16("prefix")
			out, err := ss58.Reencode(args[0], prefix)
			if err != nil {
				return err
			}
			return printResult(cmd, conversion{Input: args[0], Format: ss58.AddressFormatSS58, Output: out, Prefix: &prefix})
		},
	}
	cmd.Flags().Uint16("prefix", ss58.PrefixPolkadot, "Target SS58 network prefix")
	return cmd
}

func cmdConvertDetect() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <address>",
		Short: "Report whether an address is SS58, H160 or unknown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, conversion{Input: args[0], Format: ss58.DetectAddressFormat(args[0])})
		},
	}
}

func CmdComments() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and post escrow milestone comments.",
	}
	cmd.PersistentFlags().String("escrow", "", "Escrow id")
	cmd.PersistentFlags().String("milestone", "", "Milestone id")
	_ = cmd.MarkPersistentFlagRequired("escrow")

	cmd.AddCommand(cmdCommentsList())
	cmd.AddCommand(cmdCommentsAdd())
	cmd.AddCommand(cmdCommentsWatch())
	return cmd
}

func commentClient(cmd *cobra.Command) (*comments.Client, string, string) {
	cfg := unwrapConfig(cmd.Context())
	escrow, _ := cmd.Flags().GetString("escrow")
	milestone, _ := cmd.Flags().GetString("milestone")
	return comments.NewClient(cfg.CommentAPIURL, cfg.HTTPTimeout), escrow, milestone
}

func cmdCommentsList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the comments of an escrow milestone.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, escrow, milestone := commentClient(cmd)
			list, err := client.Comments(cmd.Context(), escrow, milestone)
			if err != nil {
				return err
			}
			return printResult(cmd, list)
		},
	}
}

func cmdCommentsAdd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Post a comment to an escrow milestone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, escrow, milestone := commentClient(cmd)
			author, _ := cmd.Flags().GetString("author")
			role, _ := cmd.Flags().GetString("role")

			c, err := client.AddComment(cmd.Context(), comments.NewComment{
				EscrowID:      escrow,
				MilestoneID:   milestone,
				Content:       args[0],
				AuthorAddress: author,
				AuthorRole:    core.Role(role),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, c)
		},
	}
	cmd.Flags().String("author", "", "SS58 address of the author")
	cmd.Flags().String("role", string(core.RoleClient), "Author role: client, worker or none")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func cmdCommentsWatch() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print new comments as they arrive until interrupted.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, escrow, milestone := commentClient(cmd)
			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				interval = unwrapConfig(cmd.Context()).PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			seen := 0
			var printErr error
			err := client.Poll(ctx, escrow, milestone, interval, func(list []comments.Comment) {
				if len(list) <= seen {
					return
				}
				if printErr = printResult(cmd, list[seen:]); printErr != nil {
					stop()
					return
				}
				seen = len(list)
			})
			if printErr != nil {
				return printErr
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Duration("interval", 0, "Poll interval (defaults to POLL_INTERVAL)")
	return cmd
}
