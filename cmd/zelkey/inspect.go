package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zelana-network/gzel/crypto"
	"github.com/zelana-network/gzel/internal/flags"
)

type outputInspect struct {
	AccountID string `json:"accountId"`
	SignerPK  string `json:"signerPublicKey"`
	PrivacyPK string `json:"privacyPublicKey"`
	Seed      string `json:"seed,omitempty"`
}

var privateFlag = &cli.BoolFlag{
	Name:  "private",
	Usage: "include the seed in the output",
}

var commandInspect = &cli.Command{
	Name:      "inspect",
	Usage:     "inspect an identity keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Print the account id and public keys of the keyfile.

Seed material can be printed by using the --private flag; make sure to use
this feature with great caution!`,
	Flags: []cli.Flag{
		jsonFlag,
		privateFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()

		content, err := os.ReadFile(keyfilepath)
		if err != nil {
			flags.Fatalf("Failed to read the keyfile at '%s': %v", keyfilepath, err)
		}
		var kf keyfile
		if err := json.Unmarshal(content, &kf); err != nil {
			flags.Fatalf("Failed to parse the keyfile: %v", err)
		}
		seedBytes, err := hex.DecodeString(kf.Seed)
		if err != nil || len(seedBytes) != 64 {
			flags.Fatalf("Keyfile seed is not 64 hex-encoded bytes")
		}

		// Re-derive everything from the seed rather than trusting the file.
		var seed [64]byte
		copy(seed[:], seedBytes)
		identity, err := crypto.NewIdentityFromSeed(seed)
		if err != nil {
			flags.Fatalf("Failed to derive identity: %v", err)
		}
		keys := identity.Keys()

		out := outputInspect{
			AccountID: identity.AccountID().Hex(),
			SignerPK:  hex.EncodeToString(keys.SignerPK[:]),
			PrivacyPK: hex.EncodeToString(keys.PrivacyPK[:]),
		}
		if ctx.Bool(privateFlag.Name) {
			out.Seed = kf.Seed
		}

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Account id:        ", out.AccountID)
			fmt.Println("Signer public key: ", out.SignerPK)
			fmt.Println("Privacy public key:", out.PrivacyPK)
			if out.Seed != "" {
				fmt.Println("Seed:              ", out.Seed)
			}
		}
		return nil
	},
}
