package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

func rewriteTree(t *testing.T, root string, opts Options, sink ChangeSink) int {
	t.Helper()

	fs := adapter.NewLocalSourceFSAdapter()

	tables, _, err := NewScanner(fs, opts).Scan(context.Background(), m.Path(root), NewNameAllocator())
	require.NoError(t, err)

	modified, err := NewRewriter(fs, opts, sink).Rewrite(context.Background(), m.Path(root), tables)
	require.NoError(t, err)

	return modified
}

func TestRewriter_ScenarioOne(t *testing.T) {
	root := writeTree(t, map[string]string{"a.smali": scenarioOne})

	modified := rewriteTree(t, root, Options{}, nil)
	assert.Equal(t, 1, modified)

	want := `.class public LDeobfClass1;
.super Ljava/lang/Object;

.field private field1:I

.method public method1()V
    .registers 2
    iget v0, p0, LDeobfClass1;->a:I
    return-void
.end method
`
	assert.Equal(t, want, readFile(t, root, "a.smali"))
}

func TestRewriter_MemberReferences(t *testing.T) {
	root := writeTree(t, map[string]string{
		"com/x/a.smali": `.class public Lcom/x/a;
.super Ljava/lang/Object;

.field private b:I

.method public c()V
    .registers 2
    iget v0, p0, Lcom/x/a;->b:I
    invoke-virtual {p0}, Lcom/x/a;->c()V
    return-void
.end method
`,
		"com/x/Main.smali": `.class public Lcom/x/Main;
.super Ljava/lang/Object;

.method public static run(Lcom/x/a;)V
    .registers 2
    iget v0, p0, Lcom/x/a;->b:I
    invoke-virtual {p0}, Lcom/x/a;->c()V
    invoke-virtual {p0}, Ljava/lang/Object;->b()V
    return-void
.end method
`,
	})

	modified := rewriteTree(t, root, Options{MemberRefs: true}, nil)
	assert.Equal(t, 2, modified)

	main := readFile(t, root, "com/x/Main.smali")
	assert.Contains(t, main, ".method public static run(Lcom/x/DeobfClass1;)V")
	assert.Contains(t, main, "iget v0, p0, Lcom/x/DeobfClass1;->field1:I")
	assert.Contains(t, main, "invoke-virtual {p0}, Lcom/x/DeobfClass1;->method1()V")
	assert.Contains(t, main, "Ljava/lang/Object;->b()V", "members of classes outside the tree stay untouched")

	owner := readFile(t, root, "com/x/a.smali")
	assert.Contains(t, owner, ".field private field1:I")
	assert.Contains(t, owner, ".method public method1()V")
	assert.Contains(t, owner, "Lcom/x/DeobfClass1;->field1:I")
}

func TestRewriter_ClassNamesAreTokenAnchored(t *testing.T) {
	root := writeTree(t, map[string]string{
		"com/x/a.smali": ".class public Lcom/x/a;\n",
		"Use.smali": `.class public LUse;
.field private foo:Lcom/x/a;
.field private bar:Lcom/x/ab;
.field private baz:Lcom/y/a;
.field private arr:[Lcom/x/a;
`,
	})

	rewriteTree(t, root, Options{}, nil)

	use := readFile(t, root, "Use.smali")
	assert.Contains(t, use, "foo:Lcom/x/DeobfClass1;")
	assert.Contains(t, use, "bar:Lcom/x/ab;")
	assert.Contains(t, use, "baz:Lcom/y/a;")
	assert.Contains(t, use, "arr:[Lcom/x/DeobfClass1;")
}

func TestRewriter_FieldsAndMethodsAreTokenAnchored(t *testing.T) {
	root := writeTree(t, map[string]string{
		"A.smali": `.class public LA;
.field private a:I
.field private ab:I
.method public a()V
.method public ab()V
.end method
`,
	})

	rewriteTree(t, root, Options{}, nil)

	got := readFile(t, root, "A.smali")
	assert.Contains(t, got, ".field private field1:I")
	assert.Contains(t, got, ".field private field2:I")
	assert.Contains(t, got, ".method public method1()V")
	assert.Contains(t, got, ".method public method2()V")
}

func TestRewriter_SinglePassNeverChains(t *testing.T) {
	tables := m.NewTables()
	tables.Fields.Put("A.smali", "a", "b")
	tables.Fields.Put("A.smali", "b", "c")
	tables.Classes.Put("La;", "Lb;")
	tables.Classes.Put("Lb;", "Lc;")

	fr := newFileRewriter(tables, "A.smali", false)

	assert.Equal(t, ".field b c:I", fr.rewriteLine(".field a b:I"))
	assert.Equal(t, "check-cast v0, Lc; Lb;", fr.rewriteLine("check-cast v0, Lb; La;"))
}

func TestRewriter_DescriptorsAfterPrimitives(t *testing.T) {
	tables := m.NewTables()
	tables.Classes.Put("Lcom/x/a;", "Lcom/x/DeobfClass1;")
	tables.Classes.Put("Lcom/x/b;", "Lcom/x/DeobfClass2;")

	fr := newFileRewriter(tables, "A.smali", false)

	assert.Equal(t,
		".method public run(ILcom/x/DeobfClass1;JLcom/x/DeobfClass2;)Lcom/x/DeobfClass1;",
		fr.rewriteLine(".method public run(ILcom/x/a;JLcom/x/b;)Lcom/x/a;"))
	assert.Equal(t,
		"    invoke-static {v0, v1}, LMain;->go(ZZ[Lcom/x/DeobfClass2;)V",
		fr.rewriteLine("    invoke-static {v0, v1}, LMain;->go(ZZ[Lcom/x/b;)V"))
	assert.Equal(t, ".field private IL:I", fr.rewriteLine(".field private IL:I"))
}

func TestRewriter_MethodWinsBeforeParen(t *testing.T) {
	tables := m.NewTables()
	tables.Fields.Put("A.smali", "a", "field1")
	tables.Methods.Put("A.smali", "a", "method1")

	fr := newFileRewriter(tables, "A.smali", false)

	assert.Equal(t, ".method public method1()V", fr.rewriteLine(".method public a()V"))
	assert.Equal(t, ".field private field1:I", fr.rewriteLine(".field private a:I"))
	assert.Equal(t, "    iget v0, p0, LA;->a:I", fr.rewriteLine("    iget v0, p0, LA;->a:I"))
}

func TestRewriter_OtherFilesScopesDoNotLeak(t *testing.T) {
	root := writeTree(t, map[string]string{
		"A.smali": ".class LA;\n.field private a:I\n",
		"B.smali": ".class LB;\n.field private a:Z\n",
		"C.smali": ".class LC;\n.field private xyz:I\n    const-string v0, \" a \"\n",
	})

	modified := rewriteTree(t, root, Options{}, nil)

	assert.Equal(t, 2, modified)
	assert.Equal(t, ".class LA;\n.field private field1:I\n", readFile(t, root, "A.smali"))
	assert.Equal(t, ".class LB;\n.field private field2:Z\n", readFile(t, root, "B.smali"))
	assert.Contains(t, readFile(t, root, "C.smali"), "\" a \"")
}

func TestRewriter_PreservesLineEndingsAndMode(t *testing.T) {
	content := ".class public La;\r\n.field private a:I\r\n.method public a()V\r\n.end method"
	root := writeTree(t, map[string]string{"a.smali": content})
	path := filepath.Join(root, "a.smali")
	require.NoError(t, os.Chmod(path, 0o600))

	rewriteTree(t, root, Options{}, nil)

	assert.Equal(t,
		".class public LDeobfClass1;\r\n.field private field1:I\r\n.method public method1()V\r\n.end method",
		readFile(t, root, "a.smali"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRewriter_DryRunWritesNothing(t *testing.T) {
	root := writeTree(t, map[string]string{"a.smali": scenarioOne})

	var changes []m.FileChange

	modified := rewriteTree(t, root, Options{DryRun: true, Diff: true}, func(change m.FileChange) error {
		changes = append(changes, change)
		return nil
	})

	assert.Equal(t, 1, modified)
	assert.Equal(t, scenarioOne, readFile(t, root, "a.smali"))

	require.Len(t, changes, 1)
	assert.Equal(t, m.Path("a.smali"), changes[0].File)
	assert.Equal(t, 4, changes[0].Lines)
	assert.Contains(t, changes[0].Diff, "--- a/a.smali")
	assert.Contains(t, changes[0].Diff, "+++ b/a.smali")
	assert.Contains(t, changes[0].Diff, "-.class public La;")
	assert.Contains(t, changes[0].Diff, "+.class public LDeobfClass1;")
}

func TestRewriter_DiffOnlyWhenRequested(t *testing.T) {
	root := writeTree(t, map[string]string{"a.smali": scenarioOne})

	var changes []m.FileChange

	rewriteTree(t, root, Options{}, func(change m.FileChange) error {
		changes = append(changes, change)
		return nil
	})

	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Diff)
}

func TestRewriter_SinkFailureAborts(t *testing.T) {
	root := writeTree(t, map[string]string{"a.smali": scenarioOne})
	fs := adapter.NewLocalSourceFSAdapter()

	tables, _, err := NewScanner(fs, Options{}).Scan(context.Background(), m.Path(root), NewNameAllocator())
	require.NoError(t, err)

	_, err = NewRewriter(fs, Options{}, func(m.FileChange) error { return errInjected }).
		Rewrite(context.Background(), m.Path(root), tables)
	require.ErrorIs(t, err, errInjected)
}

func TestRewriter_WriteFailure(t *testing.T) {
	root := writeTree(t, map[string]string{"a.smali": scenarioOne})

	fs := newFailingFS("a.smali")
	fs.failWrite = true

	tables, _, err := NewScanner(fs, Options{}).Scan(context.Background(), m.Path(root), NewNameAllocator())
	require.NoError(t, err)

	_, err = NewRewriter(fs, Options{}, nil).Rewrite(context.Background(), m.Path(root), tables)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, PhaseRewrite, runErr.Phase)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, scenarioOne, readFile(t, root, "a.smali"))
}
