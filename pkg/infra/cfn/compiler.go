package cfn

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/assets"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/construct"
	kio "github.com/jenkins-ecs/jenkins-ecs/pkg/io"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/multierr"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/provider/aws/resources"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/sanitization/aws"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/stack"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/templateutils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed templates/deploy.sh.tmpl
	files embed.FS

	deployTemplate = templateutils.MustTemplate(files, "templates/deploy.sh.tmpl")
)

type (
	Options struct {
		// Format is [config.FormatJSON] (the default) or [config.FormatYAML].
		Format string
		// OutDir is where the assembly will be written. Asset directories are recorded relative to it.
		OutDir string
	}

	// Assembly is the result of compiling an app: one template per stack plus the files describing how to deploy
	// them.
	Assembly struct {
		Manifest  *Manifest
		Templates map[string]*Template
		Assets    map[string]*AssetManifest
		Files     []kio.File
	}

	compiler struct {
		app         *stack.App
		opts        Options
		log         *zap.Logger
		logicalIds  map[construct.ResourceId]string
		templates   map[string]*Template
		imageHashes map[construct.ResourceId]string
	}
)

// Compile renders every stack of the app. All resource errors are reported together.
func Compile(app *stack.App, opts Options) (*Assembly, error) {
	switch opts.Format {
	case "":
		opts.Format = config.FormatJSON
	case config.FormatJSON, config.FormatYAML:
	default:
		return nil, errors.Errorf("unsupported template format '%s'", opts.Format)
	}
	order, err := app.StackOrder()
	if err != nil {
		return nil, err
	}

	c := &compiler{
		app:         app,
		opts:        opts,
		log:         zap.L().Named("cfn"),
		logicalIds:  make(map[construct.ResourceId]string),
		templates:   make(map[string]*Template),
		imageHashes: make(map[construct.ResourceId]string),
	}

	var errs multierr.Error
	for _, s := range order {
		description := s.Description()
		if description == "" {
			description = fmt.Sprintf("%s stack of %s", s.Name(), app.Name)
		}
		c.templates[s.Name()] = NewTemplate(description)
		errs.Append(c.assignLogicalIds(s))
	}
	assetManifests, err := c.fingerprintImages(order)
	errs.Append(err)
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	for _, s := range order {
		errs.Append(c.renderStack(s))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	assembly := &Assembly{
		Manifest:  &Manifest{Version: ManifestVersion, App: app.Name, Format: opts.Format},
		Templates: c.templates,
		Assets:    assetManifests,
	}
	for _, s := range order {
		deps, err := s.Dependencies()
		if err != nil {
			return nil, err
		}
		ms := ManifestStack{
			Name:         s.Name(),
			Template:     s.Name() + templateSuffix + "." + opts.Format,
			Environment:  s.Env().String(),
			Dependencies: deps,
		}
		content, err := marshalTemplate(c.templates[s.Name()], opts.Format)
		if err != nil {
			return nil, errors.Wrapf(err, "could not write template of %s", s.Name())
		}
		assembly.Files = append(assembly.Files, &kio.RawFile{FPath: ms.Template, Content: content})

		if am, ok := assetManifests[s.Name()]; ok {
			ms.Assets = s.Name() + assetsSuffix
			content, err := marshalJSON(am)
			if err != nil {
				return nil, err
			}
			assembly.Files = append(assembly.Files, &kio.RawFile{FPath: ms.Assets, Content: content})
		}
		assembly.Manifest.Stacks = append(assembly.Manifest.Stacks, ms)
		c.log.Info("synthesized stack",
			zap.String("stack", s.Name()), zap.Int("resources", len(c.templates[s.Name()].Resources)))
	}

	content, err := marshalJSON(assembly.Manifest)
	if err != nil {
		return nil, err
	}
	assembly.Files = append(assembly.Files, &kio.RawFile{FPath: ManifestFile, Content: content})

	script, err := c.deployScript(assembly, order)
	if err != nil {
		return nil, err
	}
	assembly.Files = append(assembly.Files, script)
	return assembly, nil
}

// assignLogicalIds names each template resource of the stack after its resource name, in CamelCase.
func (c *compiler) assignLogicalIds(s *stack.Stack) error {
	var errs multierr.Error
	owners := make(map[string]construct.ResourceId)
	for _, res := range s.Resources() {
		if !isTemplateResource(res) {
			continue
		}
		id := res.Id()
		logicalId := aws.LogicalIdSanitizer.Apply(strcase.ToCamel(id.Name))
		if logicalId == "" {
			errs.Append(fmt.Errorf("%s has no usable logical id", id))
			continue
		}
		if other, ok := owners[logicalId]; ok {
			errs.Append(fmt.Errorf("%s and %s both map to logical id %s in stack %s", other, id, logicalId, s.Name()))
			continue
		}
		owners[logicalId] = id
		c.logicalIds[id] = logicalId
	}
	return errs.ErrOrNil()
}

func (c *compiler) fingerprintImages(order []*stack.Stack) (map[string]*AssetManifest, error) {
	var errs multierr.Error
	manifests := make(map[string]*AssetManifest)
	for _, s := range order {
		for _, res := range s.Resources() {
			image, ok := res.(*resources.EcrImage)
			if !ok {
				continue
			}
			fp, err := assets.FingerprintContext(image.Context, image.Dockerfile)
			if err != nil {
				errs.Append(errors.Wrapf(err, "image %s", image.Id()))
				continue
			}
			c.imageHashes[image.Id()] = fp.Hash
			c.log.Info("fingerprinted image", zap.String("image", image.Name), zap.String("hash", fp.Hash[:12]))

			am, ok := manifests[s.Name()]
			if !ok {
				am = &AssetManifest{Version: ManifestVersion}
				manifests[s.Name()] = am
			}
			am.Images = append(am.Images, ImageAsset{
				Id:         image.Name,
				Directory:  c.relativeToOut(image.Context),
				Dockerfile: filepath.ToSlash(image.Dockerfile),
				Repository: image.Repository,
				Tag:        fp.Hash,
			})
		}
	}
	return manifests, errs.ErrOrNil()
}

func (c *compiler) relativeToOut(dir string) string {
	if c.opts.OutDir != "" {
		absOut, errOut := filepath.Abs(c.opts.OutDir)
		absDir, errDir := filepath.Abs(dir)
		if errOut == nil && errDir == nil {
			if rel, err := filepath.Rel(absOut, absDir); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(dir)
}

func (c *compiler) renderStack(s *stack.Stack) error {
	ctx := renderContext{compiler: c, stack: s}
	tmpl := c.templates[s.Name()]

	var errs multierr.Error
	for _, res := range s.Resources() {
		if !isTemplateResource(res) {
			continue
		}
		out, err := ctx.render(res)
		if err != nil {
			errs.Append(err)
			continue
		}
		tmpl.Resources[c.logicalIds[res.Id()]] = out
	}
	for _, o := range s.Outputs() {
		value, err := ctx.value(o.Value)
		if err != nil {
			errs.Append(errors.Wrapf(err, "could not render output %s of %s", o.Name, s.Name()))
			continue
		}
		tmpl.Outputs[aws.LogicalIdSanitizer.Apply(o.Name)] = &Output{Description: o.Description, Value: value}
	}
	return errs.ErrOrNil()
}

func (c *compiler) deployScript(assembly *Assembly, order []*stack.Stack) (kio.File, error) {
	data := struct {
		App           string
		StackNames    []string
		Stacks        []ManifestStack
		Images        []ImageAsset
		Repositories  []string
		AccountEnvVar string
		RegionEnvVar  string
		Account       string
		Region        string
	}{
		App:           c.app.Name,
		Stacks:        assembly.Manifest.Stacks,
		AccountEnvVar: config.AccountEnvVar,
		RegionEnvVar:  config.RegionEnvVar,
	}
	repos := make(map[string]struct{})
	for _, s := range order {
		data.StackNames = append(data.StackNames, s.Name())
		if env := s.Env(); !env.IsAgnostic() {
			data.Account, data.Region = env.Account, env.Region
		}
		if am, ok := assembly.Assets[s.Name()]; ok {
			for _, image := range am.Images {
				data.Images = append(data.Images, image)
				repos[image.Repository] = struct{}{}
			}
		}
	}
	for repo := range repos {
		data.Repositories = append(data.Repositories, repo)
	}
	sort.Strings(data.Repositories)

	content, err := templateutils.ExecuteBytes(deployTemplate, data)
	if err != nil {
		return nil, errors.Wrap(err, "could not render deploy script")
	}
	return &kio.RawFile{FPath: DeployScript, Content: content, Exec: true}, nil
}

func marshalJSON(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalTemplate(t *Template, format string) ([]byte, error) {
	content, err := marshalJSON(t)
	if err != nil {
		return nil, err
	}
	if format == config.FormatYAML {
		return yaml.JSONToYAML(content)
	}
	return content, nil
}
