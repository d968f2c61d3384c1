package gradle

// _modelOutputProperty names the project property holding the path the model is written to.
const _modelOutputProperty = "buildsync.modelOutput"

// _modelTask is registered on the root project by the init script.
const _modelTask = "buildsyncModel"

// _initScript registers a task writing the structural model of the build as JSON.
const _initScript = `import groovy.json.JsonOutput

def buildsyncKnownPlugins = ['java', 'java-library', 'java-platform', 'groovy', 'scala', 'application', 'war', 'eclipse']

rootProject {
    tasks.register('buildsyncModel') {
        doLast {
            def relative = { p, dirs -> dirs.findAll { it.exists() }.collect { p.projectDir.toPath().relativize(it.toPath()).toString() }.sort() }
            def projects = rootProject.allprojects.collect { p ->
                def sourceDirs = []
                def resourceDirs = []
                def classpath = []
                if (p.plugins.hasPlugin('java')) {
                    p.sourceSets.each { ss ->
                        sourceDirs.addAll(relative(p, ss.allJava.srcDirs))
                        resourceDirs.addAll(relative(p, ss.resources.srcDirs))
                    }
                    classpath = p.sourceSets.main.compileClasspath.files.collect { it.absolutePath }.sort()
                }
                [
                    path        : p.path,
                    name        : p.name,
                    projectDir  : p.projectDir.absolutePath,
                    buildDir    : p.layout.buildDirectory.get().asFile.absolutePath,
                    buildScript : p.buildFile.exists() ? p.buildFile.absolutePath : '',
                    sourceDirs  : sourceDirs.unique(),
                    resourceDirs: resourceDirs.unique(),
                    classpath   : classpath,
                    children    : p.childProjects.values().collect { it.path }.sort(),
                    plugins     : buildsyncKnownPlugins.findAll { p.plugins.hasPlugin(it) },
                ]
            }
            def out = new File(rootProject.property('buildsync.modelOutput').toString())
            out.text = JsonOutput.toJson([
                rootDir      : rootProject.projectDir.absolutePath,
                gradleVersion: gradle.gradleVersion,
                projects     : projects,
            ])
        }
    }
}
`
