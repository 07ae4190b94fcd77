// Package cfggen renders the generated Arma server configuration files
// from the resolved instance configuration. A hand-written template
// next to the output file takes precedence over the built-in layout.
package cfggen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
)

// ServerCfgTemplate is the optional operator-provided template file,
// looked up next to the output path. Placeholders use {{name}} syntax.
const ServerCfgTemplate = "a3server.cfg.tmpl"

// GenerateServerCfg writes the generated_a3server.cfg for cfg at
// outPath and returns outPath. Output is deterministic for a fixed
// config.
func GenerateServerCfg(cfg *config.ResolvedConfig, outPath string) (string, error) {
	log := logging.GetLogger("cfggen")
	s := cfg.Server

	if tmpl, ok := readOptionalTemplate(outPath); ok {
		log.Info().Str("path", outPath).Msg("Generating server cfg from template")
		mapping := map[string]string{
			"hostname":          quote(s.Hostname),
			"password":          quote(s.Password),
			"password_admin":    quote(s.PasswordAdmin),
			"max_players":       fmt.Sprintf("%d", s.MaxPlayers),
			"verify_signatures": fmt.Sprintf("%d", s.VerifySignatures),
			"battleye":          boolToFlag(s.BattlEye),
			"motd_interval":     fmt.Sprintf("%d", s.MotdInterval),
		}
		return outPath, writeCfg(outPath, renderTemplate(tmpl, mapping))
	}

	log.Info().Str("path", outPath).Msg("Generating server cfg from scratch")
	lines := []string{
		fmt.Sprintf(`hostname = "%s";`, quote(s.Hostname)),
		fmt.Sprintf(`password = "%s";`, quote(s.Password)),
		fmt.Sprintf(`passwordAdmin = "%s";`, quote(s.PasswordAdmin)),
		fmt.Sprintf(`maxPlayers = %d;`, s.MaxPlayers),
		fmt.Sprintf(`verifySignatures = %d;`, s.VerifySignatures),
		fmt.Sprintf(`BattlEye = %s;`, boolToFlag(s.BattlEye)),
	}

	if hc := cfg.HeadlessClients; hc.Enabled && hc.Count > 0 {
		var addrs []string
		for i := 0; i < hc.Count; i++ {
			addrs = append(addrs, `"127.0.0.1"`)
		}
		lines = append(lines,
			fmt.Sprintf("headlessClients[] = { %s };", strings.Join(addrs, ", ")),
			fmt.Sprintf("localClient[] = { %s };", strings.Join(addrs, ", ")),
		)
	}

	if len(s.Motd) > 0 {
		var quoted []string
		for _, m := range s.Motd {
			quoted = append(quoted, `"`+quote(m)+`"`)
		}
		lines = append(lines,
			fmt.Sprintf("motd[] = { %s };", strings.Join(quoted, ", ")),
			fmt.Sprintf("motdInterval = %d;", s.MotdInterval),
		)
	}

	return outPath, writeCfg(outPath, strings.Join(lines, "\n"))
}

// GenerateHeadlessCfg writes the headless client configuration at
// outPath. The clients only need the join password.
func GenerateHeadlessCfg(cfg *config.ResolvedConfig, outPath string) (string, error) {
	password := cfg.HeadlessClients.Password
	if password == "" {
		password = cfg.Server.Password
	}
	line := fmt.Sprintf(`password = "%s";`, quote(password))
	return outPath, writeCfg(outPath, line)
}

// GenerateProfileCfg writes <profilesDir>/<profileName>.Arma3Profile
// with the Custom difficulty preset the server references.
func GenerateProfileCfg(profilesDir, profileName string) (string, error) {
	log := logging.GetLogger("cfggen")
	if err := os.MkdirAll(profilesDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create profiles dir %s", profilesDir)
	}
	out := filepath.Join(profilesDir, profileName+".Arma3Profile")
	if err := writeCfg(out, profileTemplate); err != nil {
		return "", err
	}
	log.Info().Str("path", out).Msg("Generated profile cfg")
	return out, nil
}

const profileTemplate = `version=2;
difficulty="Custom";

class DifficultyPresets
{
    class CustomDifficulty
    {
        class Options
        {
            groupIndicators=0;
            friendlyTags=0;
            enemyTags=0;
            detectedMines=0;
            commands=0;
            waypoints=0;
            weaponInfo=1;
            stanceIndicator=0;
            staminaBar=1;
            weaponCrosshair=0;
            visionAid=0;
            thirdPersonView=0;
            cameraShake=1;
            scoreTable=1;
            deathMessages=0;
            vonID=1;
            mapContent=0;
            autoReport=0;
            multipleSaves=0;
        };

        aiLevelPreset=3;
    };
};`

func readOptionalTemplate(outPath string) (string, bool) {
	log := logging.GetLogger("cfggen")
	tmplPath := filepath.Join(filepath.Dir(outPath), ServerCfgTemplate)
	data, err := os.ReadFile(tmplPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", tmplPath).
				Msg("Failed to read template, falling back to generated config")
		}
		return "", false
	}
	return string(data), true
}

func renderTemplate(template string, mapping map[string]string) string {
	out := template
	for k, v := range mapping {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

func quote(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func boolToFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func writeCfg(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create config dir for %s", path)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", path)
	}
	return nil
}
