// Package envfile 提供 .env 模板的解析、动态值求值与输出文件生成。
//
// 模板为逐行的 KEY=VALUE_EXPRESSION 文本（即 .env.example 的格式）：
// 空行与 # 注释行被忽略，其余每行在第一个 = 处切分；
// 值表达式命中已配置命令前缀（如 kubectl、aws）时会交由 shell 执行，
// 捕获其 stdout 作为最终值，否则按字面值透传。
//
// # 核心不变式
//
//  1. 输出条目顺序 == 模板中有效行的顺序
//  2. 不做 KEY 去重：重复的键产生重复的输出行，由下游消费方决定优先级
//  3. 条目先在内存中全部累积，最后单次写入输出文件，失败时不留半写产物
//
// # 命令执行
//
// 逐条同步执行（模板顺序），每条命令有独立的超时上限。
// 失败处理由 [ErrorPolicy] 决定：中止、写空值或跳过。
//
// 典型用法见 [Generate]。
package envfile
